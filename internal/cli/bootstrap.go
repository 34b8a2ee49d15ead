// Package cli provides CLI commands for the custody application.
package cli

import (
	gocontext "context"
	"fmt"
	"strings"

	"github.com/example/custody/internal/config"
	"github.com/example/custody/internal/ctxutil"
	"github.com/example/custody/internal/ports/primary"
	"github.com/example/custody/internal/wire"
)

// globalActorID stores the --as override for the current CLI invocation.
// Set once at startup by DetectAndStoreActor().
var globalActorID string

// DetectAndStoreActor records the --as flag. The configured guardian is
// used when it is empty.
func DetectAndStoreActor(override string) {
	globalActorID = override
}

// GetActorID returns the acting guardian: the --as flag, then the
// configured guardian.
func GetActorID() string {
	if globalActorID != "" {
		return globalActorID
	}
	return wire.Config().GuardianID
}

// NewContext creates a context.Background() with the current actor ID embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if actorID := GetActorID(); actorID != "" {
		ctx = ctxutil.WithActorID(ctx, actorID)
	}
	if familyID := wire.Config().FamilyID; familyID != "" {
		ctx = ctxutil.WithFamilyID(ctx, familyID)
	}
	return ctx
}

// requireFamily returns the configured family ID or an error pointing at
// `custody init`.
func requireFamily(cfg *config.Config) (string, error) {
	if cfg.FamilyID == "" {
		return "", fmt.Errorf("no family configured in this directory\nRun: custody init --name \"Our family\" --label dad")
	}
	return cfg.FamilyID, nil
}

// resolveChild matches arg against the family's children by ID, then by
// case-insensitive name.
func resolveChild(ctx gocontext.Context, arg string) (string, error) {
	familyID, err := requireFamily(wire.Config())
	if err != nil {
		return "", err
	}
	overview, err := wire.FamilyService().GetFamily(ctx, familyID)
	if err != nil {
		return "", err
	}
	return matchChild(overview, arg)
}

func matchChild(overview *primary.FamilyOverview, arg string) (string, error) {
	for _, c := range overview.Children {
		if c.ID == arg {
			return c.ID, nil
		}
	}
	var matches []string
	for _, c := range overview.Children {
		if strings.EqualFold(c.Name, arg) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no child %q in this family", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d children are named %q; use the child ID", len(matches), arg)
	}
}
