// Package config provides configuration management for the contact core.
// It handles loading configuration from environment variables with sensible
// defaults and validates the configuration before use.
//
// Environment Variables:
//
//   - ADDRESS_BOOKS: comma separated "name=path" pairs for vdir address books
//   - PRIVATE_OBJECTS: comma separated private vCard extension field names
//     (stored with a leading "X-" in the vCard files)
//   - PREFERRED_VERSION: vCard version for new contacts, "3.0" or "4.0"
//     (default: 3.0)
//   - LOCALIZE_DATES: format birthday/anniversary output with a locale style
//     layout instead of ISO (default: false)
//   - SKIP_UNPARSABLE: skip unparsable vCard files while loading instead of
//     aborting (default: false)
//   - LOG_LEVEL: logging level (default: info)
//
// A ".env" file in the working directory is honored if present.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cardbook/internal/common/errors"
)

// SupportedVersions lists the vCard RFC versions this module understands.
var SupportedVersions = []string{"3.0", "4.0"}

// DefaultVersion is used for new contacts when no preference is configured.
const DefaultVersion = "3.0"

// AddressBookConfig describes one vdir address book on disk.
type AddressBookConfig struct {
	Name string // the name to identify the address book
	Path string // the directory holding the .vcf files
}

// Config holds all configuration values for the contact core.
type Config struct {
	AddressBooks     []AddressBookConfig
	PrivateObjects   []string // recognized private extension field names
	PreferredVersion string   // vCard version for new contacts
	LocalizeDates    bool
	SkipUnparsable   bool
	LogLevel         string
}

// Load reads the configuration from the environment. A .env file is loaded
// first if one exists; real environment variables take precedence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AddressBooks:     parseAddressBooks(os.Getenv("ADDRESS_BOOKS")),
		PrivateObjects:   splitList(os.Getenv("PRIVATE_OBJECTS")),
		PreferredVersion: getEnv("PREFERRED_VERSION", DefaultVersion),
		LocalizeDates:    getBoolEnv("LOCALIZE_DATES", false),
		SkipUnparsable:   getBoolEnv("SKIP_UNPARSABLE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

var privateObjectPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

// Validate checks the configuration for values the contact core cannot work
// with. It returns the first problem found.
func (c *Config) Validate() error {
	if !isSupportedVersion(c.PreferredVersion) {
		return errors.ConfigError(fmt.Sprintf(
			"preferred version must be one of %s, got %q",
			strings.Join(SupportedVersions, ", "), c.PreferredVersion))
	}
	for _, obj := range c.PrivateObjects {
		if !privateObjectPattern.MatchString(obj) {
			return errors.ConfigError(fmt.Sprintf(
				"private object %q may only contain letters, digits and "+
					"non-leading, non-trailing \"-\" characters", obj))
		}
	}
	for _, book := range c.AddressBooks {
		if book.Name == "" || book.Path == "" {
			return errors.ConfigError(
				"address books must be given as name=path pairs")
		}
	}
	return nil
}

func isSupportedVersion(version string) bool {
	for _, v := range SupportedVersions {
		if v == version {
			return true
		}
	}
	return false
}

func parseAddressBooks(raw string) []AddressBookConfig {
	var books []AddressBookConfig
	for _, entry := range splitList(raw) {
		name, path, _ := strings.Cut(entry, "=")
		books = append(books, AddressBookConfig{
			Name: strings.TrimSpace(name),
			Path: strings.TrimSpace(path),
		})
	}
	return books
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
