package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/metrics"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/infrastructure/policy"
)

const maxBaseNameLen = 100

var (
	ErrFileTooLarge        = errors.New("file exceeds the policy size cap")
	ErrPasswordTooShort    = errors.New("password shorter than policy minimum")
	ErrValidityOutOfBounds = errors.New("validity window outside policy bounds")
	ErrNotAllowed          = errors.New("requester may not manage this file")

	windowsReserved = map[string]struct{}{
		"con": {}, "prn": {}, "aux": {}, "nul": {},
		"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
		"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
	}
	fileSafeRe    = regexp.MustCompile(`[^A-Za-z0-9\.\_\- ]+`)
	leadingDotsRe = regexp.MustCompile(`^\.+`)
)

type FileService struct {
	registry file.Registry
	content  ports.ContentStore
	policy   *policy.Store
	clock    ports.Clock
	mq       ports.RabbitMQ
	mCounter *prometheus.CounterVec
}

func NewFileService(
	registry file.Registry,
	content ports.ContentStore,
	policyStore *policy.Store,
	clock ports.Clock,
	rabbit ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
) ports.FileService {
	return &FileService{
		registry: registry,
		content:  content,
		policy:   policyStore,
		clock:    clock,
		mq:       rabbit,
		mCounter: mCounter,
	}
}

// CreateFile is the upload intake: it validates the request against the
// current policy, resolves window defaults and hands a consistent
// record to the registry. An invariant violation never produces a record.
func (fs *FileService) CreateFile(
	ctx context.Context,
	owner file.Identity,
	in *multipart.FileHeader,
	opts file.Upload,
) (*file.File, error) {
	now := fs.clock.Now()
	pol := fs.policy.Current()

	if in.Size > pol.MaxFileSizeBytes {
		return nil, ErrFileTooLarge
	}
	if opts.Password != "" && utf8.RuneCountInString(opts.Password) < pol.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	f := &file.File{
		Token:         file.Token(shortuuid.New()),
		Owner:         &owner,
		IsPublic:      opts.IsPublic,
		SharedWith:    opts.SharedWith,
		TotpProtected: opts.TotpProtected,
		CreatedAt:     now,
	}

	f.AvailableFrom = now
	if opts.AvailableFrom != nil {
		f.AvailableFrom = *opts.AvailableFrom
	}
	f.AvailableTo = f.AvailableFrom.Add(pol.DefaultValidity)
	if opts.AvailableTo != nil {
		f.AvailableTo = *opts.AvailableTo
	}
	if err := f.ValidateWindow(); err != nil {
		return nil, err
	}
	if validity := f.AvailableTo.Sub(f.AvailableFrom); validity < pol.MinValidity || validity > pol.MaxValidity {
		return nil, ErrValidityOutOfBounds
	}

	if opts.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		f.PasswordHash = &h
	}

	fs.fillMetaData(in, f)

	out, err := fs.registry.CreateFile(ctx, f)
	if err != nil {
		return nil, err
	}

	fs.mq.GetInputChan() <- mq.Event{
		Id:        uuid.New(),
		TS:        now,
		Kind:      mq.KindFileUploaded,
		FileToken: string(out.Token),
	}
	fs.mCounter.WithLabelValues(metrics.FilesCreated).Inc()

	return out, nil
}

func (fs *FileService) FindFileByToken(ctx context.Context, token file.Token) (*file.File, error) {
	return fs.registry.FetchFileByToken(ctx, token)
}

func (fs *FileService) FindOwnerFiles(ctx context.Context, owner file.Identity, page int) (file.Files, error) {
	return fs.registry.FetchOwnerFiles(ctx, owner, page)
}

// DeleteFile removes a record for its owner or an administrative
// identity; the registry cascades to statistics and history.
func (fs *FileService) DeleteFile(ctx context.Context, token file.Token, requester file.Identity, isAdmin bool) error {
	f, err := fs.registry.FetchFileByToken(ctx, token)
	if err != nil {
		return err
	}
	if f == nil {
		return file.ErrNotFound
	}
	if !isAdmin && !f.IsOwner(&requester) {
		return ErrNotAllowed
	}

	if err = fs.registry.DeleteFile(ctx, token); err != nil {
		return err
	}

	fs.mq.GetInputChan() <- mq.Event{
		Id:        uuid.New(),
		TS:        fs.clock.Now(),
		Kind:      mq.KindFileDeleted,
		FileToken: string(token),
	}
	fs.mCounter.WithLabelValues(metrics.FilesDeleted).Inc()

	return nil
}

func (fs *FileService) SweepExpired(ctx context.Context) (int, error) {
	now := fs.clock.Now()
	removed, err := fs.registry.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		fs.mq.GetInputChan() <- mq.Event{
			Id:         uuid.New(),
			TS:         now,
			Kind:       mq.KindFilesSwept,
			SweptCount: removed,
		}
		fs.mCounter.WithLabelValues(metrics.FilesSwept).Add(float64(removed))
	}

	return removed, nil
}

func (fs *FileService) fillMetaData(in *multipart.FileHeader, f *file.File) {
	f.Filename = filepath.Base(sanitizeFileName(in.Filename))
	f.MimeType = in.Header.Get("Content-Type")
	f.SizeBytes = in.Size
	f.StorageKey = fs.genSafeStorageKey(f)
	f.DownloadURL = fs.content.GetPublicURL(f.StorageKey)
}

// genSafeStorageKey: "shares/YYYY/MM/DD/<ts-nanosec>/<token>/<filename>.ext"
func (fs *FileService) genSafeStorageKey(f *file.File) string {
	clean := strings.TrimSpace(f.Filename)
	clean = strings.Map(func(r rune) rune {
		if r == '\x00' || r < 0x20 {
			return -1
		}
		return r
	}, clean)
	clean = leadingDotsRe.ReplaceAllString(clean, "")

	ext := strings.ToLower(filepath.Ext(clean))
	base := strings.TrimSuffix(clean, ext)

	if ext == "" {
		if exts, _ := mime.ExtensionsByType(f.MimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	base = fileSafeRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "- .")

	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}

	if base == "" {
		base = "file"
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "" {
		ext = ".bin"
	}

	safeFileName := base + ext

	now := fs.clock.Now().UTC()
	return fmt.Sprintf(
		"shares/%04d/%02d/%02d/%s/%s/%s",
		now.Year(), int(now.Month()), now.Day(),
		now.Format("20060102T150405.000000000Z"),
		string(f.Token),
		safeFileName,
	)
}

// sanitizeFileName make file name ASCII standard
func sanitizeFileName(original string) string {
	if original == "" {
		return "file"
	}

	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)

	if s == "." || s == ".." || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := strings.ToLower(path.Ext(s))
	base := strings.TrimSuffix(s, ext)

	//  [a-z0-9], '-' и '_', dot/space → '-'
	var b strings.Builder
	b.Grow(len(base))
	prevDash := false
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_':
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		case r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		default:
		}
	}
	base = strings.Trim(b.String(), "-")

	if base == "" {
		base = "file"
	}
	if _, bad := windowsReserved[base]; bad {
		base = "_" + base
	}

	for utf8.RuneCountInString(base)+len(ext) > maxBaseNameLen {
		_, size := utf8.DecodeLastRuneInString(base)
		if size <= 0 || size > len(base) {
			break
		}
		base = base[:len(base)-size]
	}

	return base + ext
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
