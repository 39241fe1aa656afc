package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/domain"
)

func TestFetchRosterAbsorbsIdentityFailure(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.searchErrors["u1"] = errUnavailable
	gw.searches["u2"] = []domain.Ticket{{Key: "PROJ-7"}}

	result, err := NewFetcher(gw, zap.NewNop(), 2).Fetch(context.Background(), []domain.Identity{"u1", "u2"}, 1)
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "PROJ-7", result.Tickets[0].Key)
	assert.Equal(t, domain.Identity("u2"), result.Tickets[0].OriginIdentity)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, domain.UnitRosterSearch, result.Warnings[0].Unit)
	assert.Equal(t, "u1", result.Warnings[0].Key)
}

func TestFetchRosterSortsByOriginPreservingServerOrder(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.searches["zed"] = []domain.Ticket{{Key: "Z-1"}}
	gw.searches["amy"] = []domain.Ticket{{Key: "A-9"}, {Key: "A-2"}, {Key: "A-5"}}

	result, err := NewFetcher(gw, zap.NewNop(), 4).Fetch(context.Background(), []domain.Identity{"zed", "amy"}, 2)
	require.NoError(t, err)

	keys := make([]string, 0, len(result.Tickets))
	for _, ticket := range result.Tickets {
		keys = append(keys, ticket.Key)
	}
	assert.Equal(t, []string{"A-9", "A-2", "A-5", "Z-1"}, keys)
	assert.Empty(t, result.Warnings)
}

func TestFetchRosterKeepsDuplicates(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.searches["u1"] = []domain.Ticket{{Key: "SHARED-1"}}
	gw.searches["u2"] = []domain.Ticket{{Key: "SHARED-1"}}

	result, err := NewFetcher(gw, zap.NewNop(), 1).Fetch(context.Background(), []domain.Identity{"u2", "u1", "u1"}, 1)
	require.NoError(t, err)

	require.Len(t, result.Tickets, 3)
	assert.Equal(t, domain.Identity("u1"), result.Tickets[0].OriginIdentity)
	assert.Equal(t, domain.Identity("u1"), result.Tickets[1].OriginIdentity)
	assert.Equal(t, domain.Identity("u2"), result.Tickets[2].OriginIdentity)
	assert.Len(t, gw.searchCalls, 3)
}

func TestFetchSelfModeFailureIsFatal(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.searchErrors[""] = errUnavailable

	_, err := NewFetcher(gw, zap.NewNop(), 1).Fetch(context.Background(), nil, 1)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestFetchSelfModeLeavesOriginEmpty(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.searches[""] = []domain.Ticket{{Key: "B-2"}, {Key: "A-1"}}

	result, err := NewFetcher(gw, zap.NewNop(), 1).Fetch(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, result.Tickets, 2)
	assert.Equal(t, "B-2", result.Tickets[0].Key)
	assert.Empty(t, result.Tickets[0].OriginIdentity)
}
