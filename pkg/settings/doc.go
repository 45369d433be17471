/*
Package settings resolves a manager's parameters.

Resolution starts from the local parameter file. An offline manager then
merges the local settings document and validates its directories. An online
manager checks its local activity flag, loads its own parameters and its
settings-group chain from the control service, checks the central activity
flag and loads per-tool storage paths from the broker service.

Service queries are retried up to six times. Every failure is returned as a
*Failure carrying a FailureKind and the Stage it happened in; DeactivatedLocally
and DeactivatedCentrally are not fatal.
*/
package settings
