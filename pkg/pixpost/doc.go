// Package pixpost implements a minimal photo-post service: posts are
// created, listed and deleted through a Service, while an Annotator
// reacts to storage upload notifications, runs label detection on the
// uploaded image and reconciles the result into the post record.
//
// Collaborators are expressed as interfaces (Repository, ObjectStore,
// LabelDetector, URLSigner) with implementations provided under
// subpackages (memory, DynamoDB, Postgres, S3, Rekognition), so the core
// can be exercised against in-memory fakes.
//
// Consistency Model
//
// The service and the pipeline share no transaction; they meet only at
// the post record. A post is visible before its image pipeline completes,
// image and label attributes are written last-write-wins and disjoint
// from title/body, and every pipeline step tolerates at-least-once
// redelivery. On delete, the metadata record is authoritative: blobs are
// removed best-effort before the record, and orphaned blobs are an
// accepted failure mode.
package pixpost
