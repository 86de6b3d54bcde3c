package autoload

import (
	"github.com/HerbHall/snmpautoload/internal/entity"
	"github.com/HerbHall/snmpautoload/internal/iftable"
	"github.com/HerbHall/snmpautoload/internal/topology"
)

// Config holds the discovery settings of one device family.
type Config struct {
	// SupportedOS lists regexes matched against sysDescr. Empty accepts any.
	SupportedOS []string `mapstructure:"supported_os"`
	Permissive  bool     `mapstructure:"permissive"`

	PortExcludePattern        string `mapstructure:"port_exclude_pattern"`
	ModuleExcludePattern      string `mapstructure:"module_exclude_pattern"`
	ToContainerPattern        string `mapstructure:"to_container_pattern"`
	PortChannelExcludePattern string `mapstructure:"port_channel_exclude_pattern"`

	// ResourceName names the root resource. Defaults to sysName.
	ResourceName string `mapstructure:"resource_name"`
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		PortExcludePattern:   iftable.DefaultPortExcludePattern,
		ModuleExcludePattern: entity.DefaultModuleExcludePattern,
	}
}

func (c Config) entityConfig() entity.Config {
	return entity.Config{
		ToContainerPattern:   c.ToContainerPattern,
		ModuleExcludePattern: c.ModuleExcludePattern,
	}
}

func (c Config) interfaceConfig() iftable.Config {
	return iftable.Config{
		PortExcludePattern:        c.PortExcludePattern,
		PortChannelExcludePattern: c.PortChannelExcludePattern,
	}
}

func (c Config) topologyConfig() topology.Config {
	return topology.Config{Permissive: c.Permissive}
}
