package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrNotExist 表示 key 从未写入或已被删除。
var ErrNotExist = errors.New("storage: object does not exist")

// IsNoSuchKey 判断错误是否表示对象不存在（S3/MinIO: NoSuchKey/NotFound）。
func IsNoSuchKey(err error) bool {
	if errors.Is(err, ErrNotExist) {
		return true
	}
	return matches(err,
		[]string{"nosuchkey", "notfound"},
		[]string{"nosuchkey", "specified key does not exist", "not found"},
	)
}

// IsNoSuchBucket 判断错误是否表示 Bucket 不存在（S3/MinIO: NoSuchBucket）。
func IsNoSuchBucket(err error) bool {
	return matches(err,
		[]string{"nosuchbucket"},
		[]string{"nosuchbucket", "specified bucket does not exist"},
	)
}

// matches 先比对 S3 错误码，再回退到错误文本（部分网关会把错误压平成字符串）。
func matches(err error, codes, fragments []string) bool {
	if err == nil {
		return false
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		code := strings.ToLower(strings.TrimSpace(minioErr.Code))
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}

	lower := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
