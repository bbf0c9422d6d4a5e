// Package templates renders the engagement block's HTML fragments
package templates

import (
	"bytes"
	"html/template"
	"log"
)

var blockTemplates = template.Must(template.New("blockRenderer").Parse(
	`{{define "header"}}<h5 class="block_ace-card-title">{{.Title}}{{if .Help}}` +
		`<a class="btn btn-link p-0" role="button" data-container="body" data-toggle="popover" data-placement="right" data-content="{{.PopoverContent}}" data-html="true" tabindex="0" data-trigger="focus" data-original-title="" title="">` +
		`<i class="icon fa fa-question-circle text-info fa-fw " title="{{.Help}}" role="img" aria-label=""></i></a>{{end}}</h5>{{end}}` +

		`{{define "dashboardImage"}}<a href="{{.DashboardURL}}"><img src="{{.ImageURL}}" alt="{{.Label}}" class="graphimage"{{if .Toggle}} style="display: {{if .Hidden}}block{{else}}none{{end}}" id="{{.StaticID}}"{{end}} /></a>{{end}}` +

		`{{define "dashboardLink"}}<a href="{{.DashboardURL}}" class="textlink">{{.Label}}</a>{{end}}` +

		`{{define "liveGraph"}}<div class="usergraph" style="display: {{if .Hidden}}none{{else}}block{{end}}" id="{{.LiveID}}">{{.Graph}}</div>{{end}}` +

		`{{define "switchLink"}}<a href="#" class="textlink" id="{{.TriggerID}}">{{.Label}}</a>{{end}}` +

		`{{define "courseGraph"}}<div class="teachergraph">{{.}}</div>{{end}}`,
))

type headerData struct {
	Title          string
	Help           string
	PopoverContent string
}

type dashboardData struct {
	DashboardURL string
	ImageURL     string
	Label        string
	Toggle       bool
	Hidden       bool
	StaticID     string
}

type liveGraphData struct {
	Graph  template.HTML
	Hidden bool
	LiveID string
}

type switchLinkData struct {
	TriggerID string
	Label     string
}

// StudentGraphView carries what the Student mode shows when graph data exists.
type StudentGraphView struct {
	Graph        string
	DashboardURL string
	ImageURL     string
	LinkLabel    string
	Hidden       bool
	LiveID       string
	StaticID     string
	TriggerID    string
	TriggerLabel string
}

// RenderHeader renders the block title, decorated with a focus-triggered
// help popover when help is non-empty.
func RenderHeader(title, help string) string {
	var buf bytes.Buffer
	data := headerData{Title: title, Help: help}
	if help != "" {
		data.PopoverContent = "<p>" + help + "</p> "
	}
	executeBlockTemplate(&buf, "header", data)
	return buf.String()
}

// RenderDashboardFallback renders the static image and text link shown when
// the student graph has no data.
func RenderDashboardFallback(dashboardURL, imageURL, label string) string {
	var buf bytes.Buffer
	data := dashboardData{DashboardURL: dashboardURL, ImageURL: imageURL, Label: label}
	executeBlockTemplate(&buf, "dashboardImage", data)
	executeBlockTemplate(&buf, "dashboardLink", data)
	return buf.String()
}

// RenderStudentGraph renders the live graph, the static image, the dashboard
// link and the switch control. Exactly one of the live graph and the static
// image is visible.
func RenderStudentGraph(view StudentGraphView) string {
	var buf bytes.Buffer

	executeBlockTemplate(&buf, "liveGraph", liveGraphData{
		// Graph fragments come from the analytics service and are trusted markup.
		Graph:  template.HTML(view.Graph),
		Hidden: view.Hidden,
		LiveID: view.LiveID,
	})

	dashboard := dashboardData{
		DashboardURL: view.DashboardURL,
		ImageURL:     view.ImageURL,
		Label:        view.LinkLabel,
		Toggle:       true,
		Hidden:       view.Hidden,
		StaticID:     view.StaticID,
	}
	executeBlockTemplate(&buf, "dashboardImage", dashboard)
	executeBlockTemplate(&buf, "dashboardLink", dashboard)

	executeBlockTemplate(&buf, "switchLink", switchLinkData{TriggerID: view.TriggerID, Label: view.TriggerLabel})
	return buf.String()
}

// RenderCourseGraph wraps a course graph fragment.
func RenderCourseGraph(graph string) string {
	var buf bytes.Buffer
	executeBlockTemplate(&buf, "courseGraph", template.HTML(graph))
	return buf.String()
}

func executeBlockTemplate(buf *bytes.Buffer, name string, data any) {
	if err := blockTemplates.ExecuteTemplate(buf, name, data); err != nil {
		log.Printf("ERROR: Failed to execute block template '%s': %v", name, err)
		buf.WriteString("<!-- template error -->")
	}
}
