package awsml

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Errorf("s3 uri without a bucket: %s", uri)
	}
	return bucket, key, nil
}

func S3URI(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, opError("get_object", S3URI(bucket, key), err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, opError("get_object", S3URI(bucket, key), err)
	}
	return data, nil
}

func (c *Client) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return opError("put_object", S3URI(bucket, key), err)
	}
	return nil
}

func (c *Client) PutObjectStream(ctx context.Context, bucket, key string, body io.Reader) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return opError("put_object", S3URI(bucket, key), err)
	}
	return nil
}

// ListKeys returns every object key under the prefix, following pagination.
func (c *Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, opError("list_keys", S3URI(bucket, prefix), err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// GetJSON fetches an object and decodes it into v.
func (c *Client) GetJSON(ctx context.Context, uri string, v any) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	data, err := c.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return opError("get_json", uri, err)
	}
	return nil
}

// PutJSON encodes v and stores it at the uri.
func (c *Client) PutJSON(ctx context.Context, uri string, v any) error {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return opError("put_json", uri, err)
	}
	return c.PutObject(ctx, bucket, key, data)
}
