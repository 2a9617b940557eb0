package fileutil

import (
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// NewReader opens a local or remote path for reading. Paths of the form
// "s3://bucket/path/to/object" are read from S3, "http(s)://..." over HTTP,
// anything else from the local filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		return newS3Reader(path)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		resp, err := http.Get(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting %s", path)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Errorf("error getting %s: status code %d", path, resp.StatusCode)
		}
		return resp.Body, nil
	}
	return os.Open(path)
}

// ReadFile reads the full contents of a local or remote path.
func ReadFile(path string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// Exists reports whether a local path exists. Remote paths are assumed to
// exist; the eventual read reports the error if they do not.
func Exists(path string) bool {
	if strings.Contains(path, "://") {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func newS3Reader(uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid s3 uri %s", uri)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return nil, errors.Errorf("invalid s3 uri %s", uri)
	}

	region, err := bucketRegion(u.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine region for %s", uri)
	}

	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	client := s3.New(sess, aws.NewConfig().WithRegion(region))

	key := strings.TrimPrefix(u.Path, "/")
	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: &u.Host,
		Key:    &key,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting %s", uri)
	}
	return out.Body, nil
}

func bucketRegion(bucket string) (string, error) {
	sess, err := session.NewSession()
	if err != nil {
		return "", err
	}
	client := s3.New(sess, aws.NewConfig().WithRegion("us-west-1"))

	loc, err := client.GetBucketLocation(&s3.GetBucketLocationInput{Bucket: &bucket})
	if err != nil {
		return "", err
	}
	if loc.LocationConstraint == nil {
		return "us-east-1", nil
	}
	return *loc.LocationConstraint, nil
}
