package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisSlotKey(t *testing.T) {
	p := NewRedisPublisher(nil, "jira_service.jira", "")
	assert.Equal(t, "jira_service.jira", p.SlotKey(Message{}))
	assert.Equal(t, "jira_service.jira.team", p.SlotKey(Message{Name: "team"}))
	assert.Equal(t, "redis", p.Name())
}
