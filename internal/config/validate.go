package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory, DriverBadger:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			errs = append(errs, errors.New("store.postgres_url is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("store.mongo_uri is required for the mongo driver"))
		}
		if c.Store.MongoDatabase == "" {
			errs = append(errs, errors.New("store.mongo_database is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, postgres, mongo, badger", c.Store.Driver))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.SweepInterval < 0 {
		errs = append(errs, errors.New("session.sweep_interval must not be negative"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("session.secret must be at least 16 bytes"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.RateLimitEnabled && (c.Auth.RateLimitRequests <= 0 || c.Auth.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("auth rate limit requires positive requests and window"))
	}

	if c.SSO.Enabled {
		var missing []string
		for _, f := range []struct{ name, value string }{
			{"issuer_url", c.SSO.IssuerURL},
			{"client_id", c.SSO.ClientID},
			{"client_secret", c.SSO.ClientSecret},
			{"redirect_url", c.SSO.RedirectURL},
		} {
			if f.value == "" {
				missing = append(missing, "sso."+f.name)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("sso enabled but missing: %s", strings.Join(missing, ", ")))
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}
