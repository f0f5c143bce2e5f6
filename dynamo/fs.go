package dynamo

import (
	"context"
	gopath "path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/fskit"
)

// Client is the subset of the DynamoDB API the filesystem requires.
// *dynamodb.Client satisfies it; tests substitute a mock.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// FS implements fskit.FileSystem on a DynamoDB table. Each file is one item,
// so content is bounded by the DynamoDB item limit (400KB). This backend is
// meant for configuration files, manifests, and other small artifacts.
//
// Table schema:
//   - Partition key: dir (string) - the parent directory path ("/" for root)
//   - Sort key: name (string) - the entry name within the directory
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name fskit-files \
//	  --attribute-definitions AttributeName=dir,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=dir,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// Listings are a single-partition Query, already sorted by the sort key.
// Directories are marker items in their parent's partition, created
// implicitly on write.
type FS struct {
	client    Client
	tableName string
}

var _ fskit.FileSystem = (*FS)(nil)

// NewFS creates a DynamoDB-backed filesystem on the given table.
func NewFS(client Client, tableName string) *FS {
	return &FS{client: client, tableName: tableName}
}

// dirKey maps a directory path to its partition key. The root is "/" because
// DynamoDB forbids empty key attributes.
func dirKey(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}

func itemKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"dir":  &types.AttributeValueMemberS{Value: dirKey(gopath.Dir("/" + name)[1:])},
		"name": &types.AttributeValueMemberS{Value: gopath.Base(name)},
	}
}

func (s *FS) getItem(ctx context.Context, name string) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return out.Item, nil
}

func isDirItem(item map[string]types.AttributeValue) bool {
	v, ok := item["is_dir"].(*types.AttributeValueMemberBOOL)
	return ok && v.Value
}

// Exists reports whether a file or directory item exists at name.
func (s *FS) Exists(ctx context.Context, name string) (bool, error) {
	name = fskit.Normalize(name)
	if name == "" {
		return true, nil
	}
	item, err := s.getItem(ctx, name)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// Read returns the content of the file item at name.
func (s *FS) Read(ctx context.Context, name string) ([]byte, error) {
	name = fskit.Normalize(name)

	item, err := s.getItem(ctx, name)
	if err != nil {
		return nil, err
	}
	if item == nil || isDirItem(item) {
		return nil, fskit.ErrNotFound
	}
	content, ok := item["content"].(*types.AttributeValueMemberB)
	if !ok {
		return []byte{}, nil
	}
	return content.Value, nil
}

// Write stores data as a file item and ensures directory marker items exist
// for every ancestor, so listings see intermediate directories.
func (s *FS) Write(ctx context.Context, name string, data []byte) error {
	name = fskit.Normalize(name)

	item := itemKey(name)
	item["content"] = &types.AttributeValueMemberB{Value: data}
	item["size"] = &types.AttributeValueMemberN{Value: strconv.Itoa(len(data))}
	item["mtime"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().UnixNano(), 10)}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return err
	}

	return s.ensureDirs(ctx, parentOf(name))
}

func parentOf(name string) string {
	dir := gopath.Dir(name)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func (s *FS) ensureDirs(ctx context.Context, dir string) error {
	for dir != "" {
		marker := itemKey(dir)
		marker["is_dir"] = &types.AttributeValueMemberBOOL{Value: true}

		if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      marker,
		}); err != nil {
			return err
		}
		dir = parentOf(dir)
	}
	return nil
}

// Delete removes the file item at name. Absent items succeed.
func (s *FS) Delete(ctx context.Context, name string) error {
	name = fskit.Normalize(name)

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(name),
	})
	return err
}

// Stat returns metadata for name.
func (s *FS) Stat(ctx context.Context, name string) (fskit.FileInfo, error) {
	name = fskit.Normalize(name)
	if name == "" {
		return fskit.FileInfo{IsDir: true}, nil
	}

	item, err := s.getItem(ctx, name)
	if err != nil {
		return fskit.FileInfo{}, err
	}
	if item == nil {
		return fskit.FileInfo{}, fskit.ErrNotFound
	}
	if isDirItem(item) {
		return fskit.FileInfo{IsDir: true}, nil
	}

	fi := fskit.FileInfo{}
	if v, ok := item["size"].(*types.AttributeValueMemberN); ok {
		fi.Size, _ = strconv.ParseInt(v.Value, 10, 64)
	}
	if v, ok := item["mtime"].(*types.AttributeValueMemberN); ok {
		nanos, _ := strconv.ParseInt(v.Value, 10, 64)
		fi.ModTime = time.Unix(0, nanos)
	}
	return fi, nil
}

// List returns the immediate children of dir, sorted by the table's sort key.
func (s *FS) List(ctx context.Context, dir string) ([]string, error) {
	dir = fskit.Normalize(dir)

	names := make([]string, 0)
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("#d = :dir"),
			ExpressionAttributeNames: map[string]string{
				"#d": "dir",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":dir": &types.AttributeValueMemberS{Value: dirKey(dir)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["name"].(*types.AttributeValueMemberS); ok {
				names = append(names, v.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return names, nil
}

// MkdirAll creates marker items for dir and its ancestors.
func (s *FS) MkdirAll(ctx context.Context, dir string) error {
	return s.ensureDirs(ctx, fskit.Normalize(dir))
}

// RemoveAll removes dir's subtree: every child item, recursively, then dir's
// own marker.
func (s *FS) RemoveAll(ctx context.Context, dir string) error {
	dir = fskit.Normalize(dir)

	names, err := s.List(ctx, dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		child := gopath.Join(dir, name)

		item, err := s.getItem(ctx, child)
		if err != nil {
			return err
		}
		if item != nil && isDirItem(item) {
			if err := s.RemoveAll(ctx, child); err != nil {
				return err
			}
			continue
		}
		if err := s.Delete(ctx, child); err != nil {
			return err
		}
	}

	if dir == "" {
		return nil
	}
	return s.Delete(ctx, dir)
}
