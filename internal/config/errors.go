package config

import "errors"

// Sentinel Config errors (spec §7): fatal at startup, never recovered.
var (
	ErrUnknownLanguage  = errors.New("config: unknown language")
	ErrUnknownBaseModel = errors.New("config: unknown base model")
)
