// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringPATKey is the keyring entry name for the Snowflake programmatic
// access token.
const KeyringPATKey = "snowflake_pat"

// SecretMapping describes how a keyring entry maps onto a Config field.
type SecretMapping struct {
	// KeyringKey is the entry name under the ServiceName keyring service.
	KeyringKey string

	// Setter writes the secret value into the config.
	Setter func(*Config, string)

	// IsSet reports whether the config already carries a value, in which
	// case the keyring is not consulted. Environment and config file
	// values win over stored secrets.
	IsSet func(*Config) bool
}

// GetSecretMappings returns all secrets Rime can store in the OS keyring.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: KeyringPATKey,
			Setter:     func(c *Config, value string) { c.Snowflake.PAT = value },
			IsSet:      func(c *Config) bool { return c.Snowflake.PAT != "" },
		},
	}
}

// loadSecretsFromKeyring fills unset secret fields from the OS keyring.
// Lookup failures are skipped so that a locked or absent keyring backend
// degrades to env-only configuration.
func loadSecretsFromKeyring(cfg *Config) error {
	for _, mapping := range GetSecretMappings() {
		if mapping.IsSet(cfg) {
			continue
		}
		value, err := keyring.Get(ServiceName, mapping.KeyringKey)
		if err != nil {
			continue
		}
		mapping.Setter(cfg, value)
	}
	return nil
}

// GetSecretFromKeyring retrieves a secret from the OS keyring.
func GetSecretFromKeyring(key string) (string, error) {
	value, err := keyring.Get(ServiceName, key)
	if err != nil {
		return "", fmt.Errorf("error retrieving secret %q from keyring: %w", key, err)
	}
	return value, nil
}

// SaveSecretToKeyring stores a secret in the OS keyring.
func SaveSecretToKeyring(key, value string) error {
	if err := keyring.Set(ServiceName, key, value); err != nil {
		return fmt.Errorf("error saving secret %q to keyring: %w", key, err)
	}
	return nil
}

// DeleteSecretFromKeyring removes a secret from the OS keyring.
func DeleteSecretFromKeyring(key string) error {
	if err := keyring.Delete(ServiceName, key); err != nil {
		return fmt.Errorf("error deleting secret %q from keyring: %w", key, err)
	}
	return nil
}

// ListAvailableSecretKeys returns the keyring entry names Rime recognizes.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, 0, len(mappings))
	for _, mapping := range mappings {
		keys = append(keys, mapping.KeyringKey)
	}
	return keys
}
