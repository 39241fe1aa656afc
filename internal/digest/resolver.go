package digest

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
)

var mentionPattern = regexp.MustCompile(`\[~accountid:([^\]]+)\]`)

// Resolver replaces "[~accountid:<id>]" mention tokens with display names.
type Resolver struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(gateway Gateway, logger *zap.Logger) *Resolver {
	return &Resolver{gateway: gateway, logger: logger}
}

// Resolve looks up every distinct mentioned id in one bulk call and replaces
// each occurrence. Ids missing from the response stay verbatim. A failed
// lookup returns a warning; any users it did return are still applied.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, *domain.Warning) {
	ids := MentionedIDs(text)
	if len(ids) == 0 {
		return text, nil
	}

	var warning *domain.Warning
	users, err := r.gateway.GetUsersBulk(ctx, ids)
	if err != nil {
		r.logger.Warn("mention lookup failed",
			zap.Int("ids", len(ids)),
			zap.Int("resolved", len(users)),
			zap.Error(err),
		)
		warning = &domain.Warning{Unit: domain.UnitReferences, Message: err.Error()}
	}
	if len(users) == 0 {
		return text, warning
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		if u.AccountID != "" && u.DisplayName != "" {
			names[u.AccountID] = u.DisplayName
		}
	}

	return mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := mentionPattern.FindStringSubmatch(token)[1]
		if name, ok := names[id]; ok {
			return name
		}
		return token
	}), warning
}

// MentionedIDs lists the distinct ids mentioned in text in order of first
// appearance.
func MentionedIDs(text string) []domain.Identity {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	ids := make([]domain.Identity, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, domain.Identity(m[1]))
	}
	return ids
}
