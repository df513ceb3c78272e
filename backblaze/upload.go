// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package backblaze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingCredentials = errors.New("backblaze credentials are not configured")
	ErrBucketNotFound     = errors.New("bucket not found")
)

// Config holds the credentials and destination bucket for uploads
type Config struct {
	ApplicationID  string
	ApplicationKey string
	Bucket         string
}

// Enabled reports if enough configuration is present to upload
func (config Config) Enabled() bool {
	return config.ApplicationID != "" && config.ApplicationKey != "" && config.Bucket != ""
}

// ObjectName returns the name fn is stored under inside dirname
func ObjectName(fn, dirname string) string {
	if dirname == "" {
		return filepath.Base(fn)
	}

	return fmt.Sprintf("%s/%s", dirname, filepath.Base(fn))
}

// Upload copies each file to the configured bucket under dirname
func Upload(config Config, dirname string, files ...string) error {
	if !config.Enabled() {
		return ErrMissingCredentials
	}

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          config.ApplicationID,
		ApplicationKey: config.ApplicationKey,
	})
	if err != nil {
		log.Error().Err(err).Str("BucketName", config.Bucket).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(config.Bucket)
	if err != nil {
		log.Error().Err(err).Str("BucketName", config.Bucket).Msg("lookup bucket failed")
		return err
	}
	if bucket == nil {
		log.Error().Str("BucketName", config.Bucket).Msg("bucket does not exist")
		return ErrBucketNotFound
	}

	for _, fn := range files {
		if err := uploadFile(bucket, config.Bucket, fn, dirname); err != nil {
			return err
		}
	}

	return nil
}

func uploadFile(bucket *backblaze.Bucket, bucketName, fn, dirname string) error {
	reader, err := os.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not open file for upload")
		return err
	}
	defer reader.Close()

	outName := ObjectName(fn, dirname)
	file, err := bucket.UploadFile(outName, make(map[string]string), reader)
	if err != nil {
		log.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	log.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return nil
}
