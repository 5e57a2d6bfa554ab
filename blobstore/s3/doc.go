// Package s3 implements blobstore.Store for Amazon S3.
//
// Store writes through the S3 transfer manager and reads whole objects.
// CommitStore layers DynamoDB conditional writes on top so that concurrent
// publishers cannot overwrite each other's CURRENT pointer.
package s3
