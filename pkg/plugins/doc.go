/*
Package plugins resolves the resource stager and tool runner for a step tool.

The descriptor document (plugin_info.yaml by default) maps each step tool to
a class and the package providing it:

	toolRunners:
	  - tool: MSGFPlus
	    class: MSGFPlusRunner
	    package: AM_MSGFPlus_PlugIn.so
	resourcers:
	  - tool: MSGFPlus
	    class: MSGFPlusResourcer
	    package: AM_MSGFPlus_PlugIn.so

Packages register their classes with Register from an init function. A
package compiled into the binary is registered at startup; a Go shared
library (.so) is opened on first use so that its init runs. Package names
are compared without directory, extension or case.

The descriptor is read on every lookup. Every outcome is recorded in the
run summary.
*/
package plugins
