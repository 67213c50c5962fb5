package store

// DeletePolicy decides what deleting a Customer or Item that still has
// Reviews does.
type DeletePolicy int

const (
	// DeleteRestrict refuses the delete with ErrReferentialIntegrity.
	DeleteRestrict DeletePolicy = iota
	// DeleteCascade removes the referencing Reviews in the same transaction.
	DeleteCascade
)

func (p DeletePolicy) String() string {
	switch p {
	case DeleteRestrict:
		return "restrict"
	case DeleteCascade:
		return "cascade"
	default:
		return "unknown"
	}
}

// ParseDeletePolicy maps "restrict" or "cascade" to a DeletePolicy.
func ParseDeletePolicy(s string) (DeletePolicy, bool) {
	switch s {
	case "restrict", "":
		return DeleteRestrict, true
	case "cascade":
		return DeleteCascade, true
	default:
		return DeleteRestrict, false
	}
}

// Config holds configuration for the Store.
type Config struct {
	// DeletePolicy applies to DeleteCustomer and DeleteItem.
	// Default: DeleteRestrict
	DeletePolicy DeletePolicy
}

// DefaultConfig returns the restrictive defaults.
func DefaultConfig() Config {
	return Config{DeletePolicy: DeleteRestrict}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.DeletePolicy != DeleteRestrict && c.DeletePolicy != DeleteCascade {
		c.DeletePolicy = DeleteRestrict
	}
}
