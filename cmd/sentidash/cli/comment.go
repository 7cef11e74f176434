package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/econsult/sentidash/internal/dashboard"
)

var (
	commentAuthor  string
	commentFields  []string
	commentAttachs []string
)

var commentCmd = &cobra.Command{
	Use:   "comment TEXT",
	Short: "Submit a comment for sentiment and intent classification",
	Long: `Submit a single comment. The server classifies it and answers with the
detected sentiment, intent and the updated dashboard counters.

Extra form fields and file attachments can be sent along:

Examples:
  sentidash comment "Where is my order?"
  sentidash comment "Great product" --author u-17
  sentidash comment "Damaged box" --field product=p-9 --attach photo=./box.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runComment,
}

func init() {
	commentCmd.Flags().StringVar(&commentAuthor, "author", "", "comment author")
	commentCmd.Flags().StringArrayVar(&commentFields, "field", nil, "extra form field as NAME=VALUE (repeatable, comma-separated)")
	commentCmd.Flags().StringArrayVar(&commentAttachs, "attach", nil, "file attachment as FIELD=PATH (repeatable, comma-separated)")
}

func runComment(cmd *cobra.Command, args []string) error {
	fields, err := parseMappings(commentFields, "NAME=VALUE")
	if err != nil {
		return err
	}
	files, err := parseMappings(commentAttachs, "FIELD=PATH")
	if err != nil {
		return err
	}

	form := &dashboard.Form{Comment: dashboard.Comment{
		Text:   args[0],
		Author: commentAuthor,
		Fields: fields,
	}}
	names := make([]string, 0, len(files))
	for field := range files {
		names = append(names, field)
	}
	sort.Strings(names)
	for _, field := range names {
		form.Attachments = append(form.Attachments, dashboard.Attachment{Field: field, Path: files[field]})
	}

	s := newSession(cmd, false, nil)
	out := s.ctrl.SubmitComment(cmd.Context(), form)
	return s.finish(cmd, "comment", out)
}

// parseMappings parses repeated "K=V,K2=V2" flag values. An empty input
// yields a nil map.
func parseMappings(values []string, format string) (map[string]string, error) {
	var mappings map[string]string

	for _, value := range values {
		for _, entry := range strings.Split(value, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("invalid mapping %q: expected %s format", entry, format)
			}
			if strings.ContainsAny(parts[0], " \t\n") {
				return nil, fmt.Errorf("invalid field name %q", parts[0])
			}

			if mappings == nil {
				mappings = make(map[string]string)
			}
			mappings[parts[0]] = parts[1]
		}
	}
	return mappings, nil
}
