/*
Package log provides structured logging for anmgr using zerolog.

Init configures the global Logger once at startup. Components derive their
own logger with WithComponent and pass it around through their Options;
WithManager and WithTool add the manager and step tool names.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	logger := log.WithComponent("settings")
	logger.Info().Str("manager", name).Msg("manager settings resolved")

Console output is the default. JSON output is meant for log shippers.
*/
package log
