package ports

// ContentStore hands out storage coordinates for uploaded content. The
// core never moves bytes itself; a download returns the public URL as
// the content stream reference.
type ContentStore interface {
	GetPublicURL(key string) string
	GetBucket() string
}
