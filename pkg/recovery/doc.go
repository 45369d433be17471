// Package recovery detects an abnormal prior exit of a manager and wipes its
// work directory.
//
// Three sentinel files live in the manager directory: flagFile.txt while a
// task runs, flagFile_Svc.txt from older installations, and
// flagFile_DeleteError.txt after a cleanup left files behind. The last one
// is only cleared by AcknowledgeDeleteError.
//
// RunAutoCleanup reports Start, then Success or Fail, to the tracking
// service. Empty directories that refuse deletion with a permission error
// get their owner permissions widened once before a final attempt.
package recovery
