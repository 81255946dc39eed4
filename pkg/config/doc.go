/*
Package config loads the YAML engine configuration cmd/quill reads at
startup, via github.com/cuemby/quill/pkg/log's Level type and
gopkg.in/yaml.v3, scaled to this engine's knob set (data directory,
cache sizes, log level).
*/
package config
