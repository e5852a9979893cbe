package blogspace

// Post targets. A post belongs to exactly one space; "none" posts are
// visible only to the authenticated owner.
const (
	TargetBlog = "blog"
	TargetWork = "work"
	TargetNone = "none"
)

// ValidTarget reports whether t is one of the known post targets.
func ValidTarget(t string) bool {
	return t == TargetBlog || t == TargetWork || t == TargetNone
}

// PostEntry is the lightweight index record used for listings and filtering.
// The full body lives in a separate row, fetched only on single-post view.
type PostEntry struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Created     string // local date at publish time, YYYY-MM-DD
	CreatedAt   int64  // unix seconds, listing sort key
	Views       int64
	Target      string
	Link        string
}

// PostBody holds the full rendered content of a post. A body exists if and
// only if a PostEntry with the same id exists; the two are written together
// in one transaction.
type PostBody struct {
	ID    string
	Title string
	Body  string // rich-formatted HTML from the editor
}

// PublishDraft carries the submitted publish-form values so a rejected
// submission can re-present the form with nothing lost.
type PublishDraft struct {
	Title       string
	Description string
	Target      string
	Tags        string
	Body        string
}

// Image is an uploaded binary keyed by the percent-encoded original
// filename. A later upload with the same filename overwrites the earlier
// bytes.
type Image struct {
	ID         string
	Data       []byte
	UploadedAt string
}
