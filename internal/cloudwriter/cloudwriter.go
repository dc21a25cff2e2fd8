package cloudwriter

// CloudWriter buffers object data and uploads it on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

// CloudWriterFactory creates writers bound to a bucket and object path.
type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}
