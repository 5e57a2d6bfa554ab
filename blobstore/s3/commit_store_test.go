package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/bitdex/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ blobstore.Store = (*CommitStore)(nil)

func latest(version, current string) *dynamodb.QueryOutput {
	return &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{
			"base_uri": &types.AttributeValueMemberS{Value: "s3://bucket/prefix"},
			"version":  &types.AttributeValueMemberN{Value: version},
			"current":  &types.AttributeValueMemberS{Value: current},
		}},
	}
}

func TestCommitStore_GetCurrent(t *testing.T) {
	ddb := new(MockDDBClient)
	store := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://bucket/prefix")

	ddb.On("Query", mock.Anything, mock.MatchedBy(func(input *dynamodb.QueryInput) bool {
		return *input.TableName == "commits" && !*input.ScanIndexForward && *input.Limit == 1
	})).Return(latest("7", "snap-0007.bdx"), nil).Once()

	data, err := store.Get(context.Background(), blobstore.CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "snap-0007.bdx", string(data))
	ddb.AssertExpectations(t)
}

func TestCommitStore_GetCurrentEmpty(t *testing.T) {
	ddb := new(MockDDBClient)
	store := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://bucket/prefix")

	ddb.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	_, err := store.Get(context.Background(), blobstore.CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	version, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestCommitStore_PutCurrent(t *testing.T) {
	ddb := new(MockDDBClient)
	store := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://bucket/prefix")

	ddb.On("Query", mock.Anything, mock.Anything).Return(latest("3", "snap-0003.bdx"), nil).Once()
	ddb.On("PutItem", mock.Anything, mock.MatchedBy(func(input *dynamodb.PutItemInput) bool {
		v, ok := input.Item["version"].(*types.AttributeValueMemberN)
		c, ok2 := input.Item["current"].(*types.AttributeValueMemberS)
		return ok && ok2 && v.Value == "4" && c.Value == "snap-0004.bdx" &&
			*input.ConditionExpression == "attribute_not_exists(version)"
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	err := store.Put(context.Background(), blobstore.CurrentName, []byte("snap-0004.bdx"))
	require.NoError(t, err)
	ddb.AssertExpectations(t)
}

func TestCommitStore_PutCurrentConflict(t *testing.T) {
	ddb := new(MockDDBClient)
	store := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://bucket/prefix")

	ddb.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()
	ddb.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{}).Once()

	err := store.Put(context.Background(), blobstore.CurrentName, []byte("snap-0001.bdx"))
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestCommitStore_QueryError(t *testing.T) {
	ddb := new(MockDDBClient)
	store := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://bucket/prefix")

	boom := errors.New("throttled")
	ddb.On("Query", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err := store.Get(context.Background(), blobstore.CurrentName)
	assert.ErrorIs(t, err, boom)
}

func TestCommitStore_DelegatesBlobs(t *testing.T) {
	ddb := new(MockDDBClient)
	inner := blobstore.NewMemoryStore()
	store := NewCommitStore(inner, ddb, "commits", "s3://bucket/prefix")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "snap-0001.bdx", []byte("data")))

	data, err := inner.Get(ctx, "snap-0001.bdx")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"snap-0001.bdx"}, names)

	require.NoError(t, store.Delete(ctx, "snap-0001.bdx"))
	_, err = store.Get(ctx, "snap-0001.bdx")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	ddb.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	ddb.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}
