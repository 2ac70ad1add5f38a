package types

// Upload is a file submitted for the media host.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
