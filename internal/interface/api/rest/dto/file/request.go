package file

// UploadRequest carries the multipart form fields accompanying the
// uploaded content. String fields arrive raw; the validator parses and
// normalizes them.
type UploadRequest struct {
	IsPublic      *bool  `form:"is_public"`
	Password      string `form:"password"`
	SharedWith    string `form:"shared_with"` // comma separated emails
	AvailableFrom string `form:"available_from"`
	AvailableTo   string `form:"available_to"`
	TotpProtected bool   `form:"totp_protected"`
}
