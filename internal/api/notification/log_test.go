package notification

import (
	"context"
	"testing"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage/memory"
	"github.com/cuongbtq/jobboard-be/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	assert.Equal(t, "You have successfully applied for the job: Backend Developer", AppliedMessage("Backend Developer"))
	assert.Equal(t, "You have been shortlisted for the job: Backend Developer", ShortlistedMessage("Backend Developer"))
	assert.Equal(t, `Job "Backend Developer" has been closed.`, ClosedMessage("Backend Developer"))
}

func TestLog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := &model.User{Name: "Mahmoud", Email: "mahmoud@example.com", Age: 25}
	require.NoError(t, store.CreateUser(ctx, user))

	log := NewLog(store, logger.NewNop().Logger)

	_, err := log.Append(ctx, user.ID, "first")
	require.NoError(t, err)
	second, err := log.Append(ctx, user.ID, "second")
	require.NoError(t, err)

	_, err = log.Append(ctx, 404, "lost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "User with ID 404 not found")

	list, err := log.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
	assert.False(t, list[0].Read)

	read, err := log.MarkRead(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	_, err = log.MarkRead(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
