package digest

import "github.com/spec-kit/jira-digest/internal/domain"

// SelectComment returns the most recently created comment written by
// filterKey. In SelfMode authors are matched by email address, in RosterMode
// by account id. Comment order is not assumed; the earliest of equally
// timestamped matches wins.
func SelectComment(comments []domain.Comment, mode domain.Mode, filterKey domain.Identity) (domain.Comment, bool) {
	var (
		best  domain.Comment
		found bool
	)
	for _, c := range comments {
		if !authoredBy(c.Author, mode, string(filterKey)) {
			continue
		}
		if !found || c.Created > best.Created {
			best = c
			found = true
		}
	}
	return best, found
}

func authoredBy(author domain.Author, mode domain.Mode, key string) bool {
	if mode == domain.RosterMode {
		return author.AccountID != "" && author.AccountID == key
	}
	return author.EmailAddress != nil && *author.EmailAddress == key
}
