package config

import (
	"errors"
	"fmt"
)

type ConfigErrorKind int

const (
	ConfigErrorKindNotFound ConfigErrorKind = iota + 1
	ConfigErrorKindDecode
	ConfigErrorKindUnknownKey
	ConfigErrorKindInvalid
	ConfigErrorKindUnsupportedVersion
	ConfigErrorKindEncode
	ConfigErrorKindWrite
	ConfigErrorKindAlreadyExists
)

var (
	ErrConfigNotFound           = errors.New("config: file not found")
	ErrConfigDecode             = errors.New("config: unable to decode TOML")
	ErrConfigUnknownKey         = errors.New("config: unknown key")
	ErrConfigInvalid            = errors.New("config: invalid value")
	ErrConfigUnsupportedVersion = errors.New("config: unsupported version")
	ErrConfigEncode             = errors.New("config: unable to encode TOML")
	ErrConfigWrite              = errors.New("config: unable to write file")
	ErrConfigAlreadyExists      = errors.New("config: file already exists")
)

func (k ConfigErrorKind) String() string {
	switch k {
	case ConfigErrorKindNotFound:
		return "not_found"
	case ConfigErrorKindDecode:
		return "decode"
	case ConfigErrorKindUnknownKey:
		return "unknown_key"
	case ConfigErrorKindInvalid:
		return "invalid"
	case ConfigErrorKindUnsupportedVersion:
		return "unsupported_version"
	case ConfigErrorKindEncode:
		return "encode"
	case ConfigErrorKindWrite:
		return "write"
	case ConfigErrorKindAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

type ConfigError struct {
	Kind ConfigErrorKind
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%s) %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool {
	switch e.Kind {
	case ConfigErrorKindNotFound:
		return target == ErrConfigNotFound
	case ConfigErrorKindDecode:
		return target == ErrConfigDecode
	case ConfigErrorKindUnknownKey:
		return target == ErrConfigUnknownKey
	case ConfigErrorKindInvalid:
		return target == ErrConfigInvalid
	case ConfigErrorKindUnsupportedVersion:
		return target == ErrConfigUnsupportedVersion
	case ConfigErrorKindEncode:
		return target == ErrConfigEncode
	case ConfigErrorKindWrite:
		return target == ErrConfigWrite
	case ConfigErrorKindAlreadyExists:
		return target == ErrConfigAlreadyExists
	}
	return false
}
