// Package objectstore writes generated images to an S3-compatible bucket
// using aws-sdk-go-v2 and returns their public URLs.
package objectstore
