// Package ingest builds the local corpus from batches of documents.
//
// The Builder type feeds documents to a corpus store concurrently using
// a worker pool. Failed documents are reported per document and do not
// fail the batch.
package ingest
