package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/cli/output"
	"github.com/hvlabs/apibind/internal/registry"
	"github.com/hvlabs/apibind/pkg/link"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared interfaces, operations and bindings",
		Long: `List every interface declaration found in the configured directories,
with its operations, symbols and bindings.

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: markdown (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all interfaces
  apibind list

  # List as JSON
  apibind list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	return cmd
}

// ListOutput is the JSON shape of a list run.
type ListOutput struct {
	Namespace  string          `json:"namespace"`
	Interfaces []InterfaceInfo `json:"interfaces"`
	Summary    ListSummary     `json:"summary"`
}

// InterfaceInfo describes one interface in JSON output.
type InterfaceInfo struct {
	Name       string          `json:"name"`
	Package    string          `json:"package"`
	File       string          `json:"file"`
	Constraint string          `json:"constraint,omitempty"`
	Operations []OperationInfo `json:"operations"`
	Bindings   []BindingInfo   `json:"bindings"`
}

// OperationInfo describes one operation in JSON output.
type OperationInfo struct {
	Name       string `json:"name"`
	Signature  string `json:"signature"`
	Symbol     string `json:"symbol"`
	Constraint string `json:"constraint,omitempty"`
}

// BindingInfo describes one binding in JSON output.
type BindingInfo struct {
	Marker  string `json:"marker"`
	Package string `json:"package"`
	File    string `json:"file"`
}

// ListSummary aggregates counts.
type ListSummary struct {
	Interfaces int `json:"interfaces"`
	Operations int `json:"operations"`
	Bindings   int `json:"bindings"`
}

func runList(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	snap, err := cmdCtx.Engine.Scan()
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	for _, d := range snap.Diags {
		r.Warning(d.Error())
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(snap.Registry, cmdCtx.Config.Namespace, r)
	case output.ModeMarkdown:
		return listMarkdown(snap.Registry, cmdCtx.Config.Namespace, r)
	default:
		return listText(snap.Registry, r)
	}
}

// listText outputs interfaces as a styled table.
func listText(reg *registry.Registry, r *output.Renderer) error {
	ifaces := reg.Interfaces()
	r.Header(1, fmt.Sprintf("Interfaces (%d total)", len(ifaces)))

	var rows [][]string
	for _, iface := range ifaces {
		var markers []string
		for _, b := range reg.Bindings(iface.Name) {
			markers = append(markers, b.Marker)
		}
		rows = append(rows, []string{
			iface.Name,
			iface.Package,
			fmt.Sprintf("%d", len(iface.Ops)),
			strings.Join(markers, ", "),
		})
	}
	r.Table([]string{"Interface", "Package", "Ops", "Bindings"}, rows)
	return nil
}

// listMarkdown outputs interfaces in markdown format.
func listMarkdown(reg *registry.Registry, namespace string, r *output.Renderer) error {
	ifaces := reg.Interfaces()
	r.Println(output.FormatHeader(1, fmt.Sprintf("Interfaces (%d total)", len(ifaces))))
	r.Println("")

	for _, iface := range ifaces {
		r.Println(output.FormatHeader(2, iface.Name))
		r.Println(output.FormatKeyValue("Package", iface.Package))
		r.Println(output.FormatKeyValue("File", iface.File))
		if iface.Constraint != "" {
			r.Println(output.FormatKeyValue("Constraint", iface.Constraint))
		}

		for _, op := range iface.Ops {
			line := fmt.Sprintf("- `%s%s` -> `%s`", op.Name, op.Signature(), link.Symbol(iface.Namespace, iface.Name, op.Name))
			if op.Constraint != "" {
				line += fmt.Sprintf(" (requires %s)", op.Constraint)
			}
			r.Println(line)
		}

		if bindings := reg.Bindings(iface.Name); len(bindings) > 0 {
			var markers []string
			for _, b := range bindings {
				markers = append(markers, fmt.Sprintf("%s (%s)", b.Marker, b.Package))
			}
			r.Println(output.FormatKeyValue("Bindings", strings.Join(markers, ", ")))
		}
		r.Println("")
	}
	return nil
}

// listJSON outputs interfaces in JSON format.
func listJSON(reg *registry.Registry, namespace string, r *output.Renderer) error {
	ifaces := reg.Interfaces()

	listOutput := ListOutput{
		Namespace:  namespace,
		Interfaces: make([]InterfaceInfo, 0, len(ifaces)),
	}

	for _, iface := range ifaces {
		info := InterfaceInfo{
			Name:       iface.Name,
			Package:    iface.Package,
			File:       iface.File,
			Constraint: iface.Constraint,
			Operations: make([]OperationInfo, 0, len(iface.Ops)),
			Bindings:   []BindingInfo{},
		}
		for _, op := range iface.Ops {
			info.Operations = append(info.Operations, OperationInfo{
				Name:       op.Name,
				Signature:  op.Signature(),
				Symbol:     link.Symbol(iface.Namespace, iface.Name, op.Name),
				Constraint: op.Constraint,
			})
			listOutput.Summary.Operations++
		}
		for _, b := range reg.Bindings(iface.Name) {
			info.Bindings = append(info.Bindings, BindingInfo{
				Marker:  b.Marker,
				Package: b.Package,
				File:    b.File,
			})
			listOutput.Summary.Bindings++
		}
		listOutput.Interfaces = append(listOutput.Interfaces, info)
	}
	listOutput.Summary.Interfaces = len(ifaces)

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(listOutput)
}
