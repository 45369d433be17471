package params

// Parameter names shared by the resolver, the recovery manager and the plugin resolver.
const (
	ManagerName           = "MgrName"
	UsingDefaults         = "UsingDefaults"
	OfflineMode           = "OfflineMode"
	ManagerActiveLocal    = "MgrActive_Local"
	ManagerActive         = "MgrActive"
	SettingsGroupName     = "MgrSettingGroupName"
	LocalSettingsFile     = "LocalSettingsFile"
	MaintenanceWindow     = "MaintenanceWindow"
	ServiceRetryHoldoff   = "ServiceRetryHoldoffSeconds"
	ControlConnection     = "MgrCnfgDbConnectStr"
	BrokerConnection      = "BrokerConnectionString"
	TrackingConnection    = "DefaultDMSConnString"
	LocalTaskQueuePath    = "LocalTaskQueuePath"
	LocalWorkDirPath      = "LocalWorkDirPath"
	WorkDir               = "WorkDir"
	ManagerDir            = "ManagerDirectory"
	PluginDirectory       = "PluginDirectory"
	PluginInfoFile        = "PluginInfoFile"
	CleanupMode           = "ManagerErrorCleanupMode"
	CleanupHoldoff        = "ManagerErrorCleanupHoldoffSeconds"
	DeveloperHosts        = "DeveloperHosts"
	DebugLevel            = "DebugLevel"
	StepToolStoragePrefix = "StepToolParamFileStoragePath_"
)
