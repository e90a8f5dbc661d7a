package views

import (
	"context"
	"strings"

	"github.com/voiceclone-ai/voice-clone-backend/internal/client"
	"github.com/voiceclone-ai/voice-clone-backend/internal/recorder"
)

// ProjectView drives one project screen: the recorder, the sample list, the
// text box, and the generated-audio list.
type ProjectView struct {
	api       *client.Client
	notify    Notifier
	rec       *recorder.Recorder
	projectID string

	project    *client.Project
	samples    []client.VoiceSample
	generated  []client.GeneratedAudio
	inputText  string
	loading    bool
	uploading  bool
	generating bool
}

func NewProjectView(api *client.Client, notify Notifier, rec *recorder.Recorder, projectID string) *ProjectView {
	return &ProjectView{
		api:       api,
		notify:    notify,
		rec:       rec,
		projectID: projectID,
		loading:   true,
	}
}

// Refresh refetches the project, its samples, and its generated audio, each
// newest first.
func (v *ProjectView) Refresh(ctx context.Context) {
	defer func() { v.loading = false }()

	project, err := v.api.GetProject(ctx, v.projectID)
	if err != nil {
		v.notify.Failure("Error", "Failed to load project data")
		return
	}

	samples, err := v.api.ListSamples(ctx, v.projectID)
	if err != nil {
		v.notify.Failure("Error", "Failed to load project data")
		return
	}

	generated, err := v.api.ListGenerated(ctx, v.projectID)
	if err != nil {
		v.notify.Failure("Error", "Failed to load project data")
		return
	}

	v.project = project
	v.samples = samples
	v.generated = generated
}

// UploadSample submits the captured take under the given name. On success the
// capture state resets and the listings refresh.
func (v *ProjectView) UploadSample(ctx context.Context, name string) bool {
	if v.rec.State() != recorder.StateCaptured || strings.TrimSpace(name) == "" {
		v.notify.Failure("Error", "Please provide a name for the voice sample")
		return false
	}

	v.uploading = true
	defer func() { v.uploading = false }()

	if err := v.api.UploadSample(ctx, v.projectID, name, v.rec); err != nil {
		v.notify.Failure("Error", "Failed to upload voice sample")
		return false
	}

	v.notify.Success("Success", "Voice sample uploaded successfully")
	v.Refresh(ctx)
	return true
}

// GenerateSpeech submits the current input text. Empty text and a project
// with no samples are rejected before any request goes out; success clears
// the text box and refreshes the listings.
func (v *ProjectView) GenerateSpeech(ctx context.Context) bool {
	if strings.TrimSpace(v.inputText) == "" {
		v.notify.Failure("Error", "Please enter text to generate speech")
		return false
	}
	if len(v.samples) == 0 {
		v.notify.Warning("Error", "Please upload at least one voice sample first")
		return false
	}

	v.generating = true
	defer func() { v.generating = false }()

	refs := make([]client.SampleRef, 0, len(v.samples))
	for _, s := range v.samples {
		refs = append(refs, client.SampleRef{Name: s.Name, AudioURL: s.AudioURL})
	}

	if err := v.api.GenerateSpeech(ctx, v.projectID, v.inputText, refs); err != nil {
		v.notify.Failure("Error", "Failed to generate speech")
		return false
	}

	v.notify.Success("Success", "Speech generated successfully")
	v.inputText = ""
	v.Refresh(ctx)
	return true
}

func (v *ProjectView) SetInputText(s string) { v.inputText = s }
func (v *ProjectView) InputText() string     { return v.inputText }

func (v *ProjectView) Project() *client.Project           { return v.project }
func (v *ProjectView) Samples() []client.VoiceSample      { return v.samples }
func (v *ProjectView) Generated() []client.GeneratedAudio { return v.generated }

func (v *ProjectView) Loading() bool    { return v.loading }
func (v *ProjectView) Uploading() bool  { return v.uploading }
func (v *ProjectView) Generating() bool { return v.generating }
