package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidRemoteConfigs indicates invalid remote service settings
	// (for example, a missing or malformed base URL).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")

	// ErrInvalidStorageConfigs indicates invalid storage settings.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")

	// ErrInvalidConnectivityConfigs indicates invalid probe settings
	// (for example, no endpoints or a timeout longer than the interval).
	ErrInvalidConnectivityConfigs = errors.New("invalid connectivity configuration")

	// ErrInvalidRefreshConfigs indicates an unparseable refresh schedule or
	// an empty collection list.
	ErrInvalidRefreshConfigs = errors.New("invalid refresh configuration")

	// ErrUnsupportedConfigFile is returned for config files whose extension
	// is not .json, .yaml, .yml or .toml.
	ErrUnsupportedConfigFile = errors.New("unsupported config file type")
)
