package profile

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDash  = regexp.MustCompile(`-{2,}`)
	slugValid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

const maxSlugAttempts = 1000

// Slugify lowercases name, turns whitespace into dashes and drops everything outside [a-z0-9-].
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ValidSlug(s string) bool {
	return len(s) <= 80 && slugValid.MatchString(s)
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// uniqueSlug appends -1, -2, ... to base until no other business uses it.
func uniqueSlug(ctx context.Context, repo slugChecker, base, businessID string) (string, error) {
	if base == "" {
		base = "business"
	}
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := repo.SlugExists(ctx, candidate, businessID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", errSlugExhausted
}
