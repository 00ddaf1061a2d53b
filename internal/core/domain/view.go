package domain

import "fmt"

const (
	NotAvailable       = "N/A"
	SubmitLabelIdle    = "Predict Document"
	SubmitLabelLoading = "Analyzing Document..."
)

// FormView is a rendering snapshot of one form. It is derived from the
// controller state and carries no behavior of its own.
type FormView struct {
	Email              *FileView    `json:"email,omitempty"`
	Attachments        []FileView   `json:"attachments"`
	EmailInputKey      int          `json:"email_input_key"`
	AttachmentInputKey int          `json:"attachment_input_key"`
	Loading            bool         `json:"loading"`
	SubmitLabel        string       `json:"submit_label"`
	SubmitDisabled     bool         `json:"submit_disabled"`
	Error              string       `json:"error,omitempty"`
	Result             *ResultView  `json:"result,omitempty"`
	Preview            *PreviewView `json:"preview,omitempty"`
}

type FileView struct {
	Name      string       `json:"name"`
	MediaType string       `json:"media_type"`
	Size      int          `json:"size"`
	Category  FileCategory `json:"category"`
}

type ResultView struct {
	RequestType       string `json:"request_type"`
	SubRequestType    string `json:"sub_request_type"`
	DuplicateFound    bool   `json:"duplicate_found"`
	SimilarityPercent string `json:"similarity_percent,omitempty"`
	ShowSimilarTo     bool   `json:"show_similar_to"`
	SimilarText       string `json:"similar_text,omitempty"`
	Reasoning         string `json:"reasoning,omitempty"`
}

type PreviewView struct {
	Name        string       `json:"name"`
	Category    FileCategory `json:"category"`
	URL         string       `json:"url"`
	DownloadURL string       `json:"download_url"`
	Text        string       `json:"text,omitempty"`
	TextPending bool         `json:"text_pending"`
	PageCount   int          `json:"page_count,omitempty"`
	Notice      string       `json:"notice,omitempty"`
}

func NewFileView(f File) FileView {
	return FileView{
		Name:      f.Name,
		MediaType: f.MediaType,
		Size:      f.Size(),
		Category:  CategoryOf(f.MediaType),
	}
}

// NewResultView applies the display fallbacks: missing categories render as
// N/A and a zero similarity hides the similarity details.
func NewResultView(r *ClassificationResult) *ResultView {
	if r == nil {
		return nil
	}
	view := &ResultView{
		RequestType:    orNotAvailable(r.RequestType),
		SubRequestType: orNotAvailable(r.SubRequestType),
		DuplicateFound: r.IsDuplicate(),
		Reasoning:      StringValue(r.Reasoning),
	}
	if r.HasSimilarity() {
		view.SimilarityPercent = fmt.Sprintf("%.2f", *r.Similarity*100)
		view.ShowSimilarTo = true
		view.SimilarText = orNotAvailable(r.SimilarText)
	}
	return view
}

func orNotAvailable(v *string) string {
	if v == nil || *v == "" {
		return NotAvailable
	}
	return *v
}
