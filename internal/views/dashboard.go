// Package views holds the state containers behind the dashboard and project
// screens. Every mutation is followed by a full refetch; nothing is cached
// and nothing retries.
package views

import (
	"context"
	"strings"

	"github.com/voiceclone-ai/voice-clone-backend/internal/client"
)

// Dashboard lists the user's projects and creates new ones.
type Dashboard struct {
	api    *client.Client
	notify Notifier

	projects []client.Project
	loading  bool
}

func NewDashboard(api *client.Client, notify Notifier) *Dashboard {
	return &Dashboard{
		api:     api,
		notify:  notify,
		loading: true,
	}
}

// Refresh refetches the complete project list, newest first.
func (d *Dashboard) Refresh(ctx context.Context) {
	defer func() { d.loading = false }()

	projects, err := d.api.ListProjects(ctx)
	if err != nil {
		d.notify.Failure("Error", "Failed to load projects")
		return
	}
	d.projects = projects
}

// CreateProject creates a project and refreshes the listing. A name that is
// empty after trimming never dispatches a request.
func (d *Dashboard) CreateProject(ctx context.Context, name, description string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}

	if _, err := d.api.CreateProject(ctx, name, description); err != nil {
		d.notify.Failure("Error", "Failed to create project. Please try again.")
		return false
	}

	d.notify.Success("Project created", "Your voice cloning project has been created successfully.")
	d.Refresh(ctx)
	return true
}

func (d *Dashboard) Projects() []client.Project {
	return d.projects
}

func (d *Dashboard) Loading() bool {
	return d.loading
}

// DescriptionText renders a project description, falling back to
// "No description" when none was given.
func DescriptionText(p client.Project) string {
	if p.Description == nil || strings.TrimSpace(*p.Description) == "" {
		return "No description"
	}
	return *p.Description
}
