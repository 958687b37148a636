package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/truelist/truelist-go"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// ResultOutput is the serialized form of one validation.
type ResultOutput struct {
	Email      string `json:"email" yaml:"email"`
	State      string `json:"state,omitempty" yaml:"state,omitempty"`
	SubState   string `json:"sub_state,omitempty" yaml:"sub_state,omitempty"`
	Domain     string `json:"domain,omitempty" yaml:"domain,omitempty"`
	FreeEmail  bool   `json:"free_email" yaml:"free_email"`
	Role       bool   `json:"role" yaml:"role"`
	Disposable bool   `json:"disposable" yaml:"disposable"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	CheckedAt  string `json:"checked_at,omitempty" yaml:"checked_at,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// AccountOutput is the serialized form of the account.
type AccountOutput struct {
	Email       string `json:"email" yaml:"email"`
	Plan        string `json:"plan" yaml:"plan"`
	Credits     int    `json:"credits" yaml:"credits"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	UUID        string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	TimeZone    string `json:"time_zone,omitempty" yaml:"time_zone,omitempty"`
	IsAdminRole bool   `json:"is_admin_role" yaml:"is_admin_role"`
}

func convertOutcome(o outcome) ResultOutput {
	out := ResultOutput{Email: o.Email}
	if !o.CheckedAt.IsZero() {
		out.CheckedAt = o.CheckedAt.UTC().Format(time.RFC3339)
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		return out
	}

	r := o.Result
	out.State = string(r.State)
	out.SubState = string(r.SubState)
	out.Domain = r.Domain
	out.FreeEmail = r.FreeEmail
	out.Role = r.IsRole()
	out.Disposable = r.IsDisposable()
	out.Suggestion = r.Suggestion
	return out
}

func convertAccount(info truelist.AccountInfo) AccountOutput {
	return AccountOutput{
		Email:       info.Email,
		Plan:        info.Plan,
		Credits:     info.Credits,
		Name:        info.Name,
		UUID:        info.UUID,
		TimeZone:    info.TimeZone,
		IsAdminRole: info.IsAdminRole,
	}
}

func writeOutcomes(w io.Writer, format outputFormat, outcomes []outcome) error {
	results := make([]ResultOutput, len(outcomes))
	for i, o := range outcomes {
		results[i] = convertOutcome(o)
	}

	switch format {
	case formatJSON:
		return writeJSON(w, results)
	case formatYAML:
		return writeYAML(w, results)
	}

	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tSTATE\tSUB-STATE\tFLAGS\tSUGGESTION")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tError\t-\t-\t%s\n", r.Email, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Email,
			title.String(r.State),
			r.SubState,
			dash(flagList(r)),
			dash(r.Suggestion),
		)
	}
	return tw.Flush()
}

func flagList(r ResultOutput) string {
	var flags []string
	if r.FreeEmail {
		flags = append(flags, "free")
	}
	if r.Role {
		flags = append(flags, "role")
	}
	if r.Disposable {
		flags = append(flags, "disposable")
	}
	return strings.Join(flags, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeAccount(w io.Writer, format outputFormat, info truelist.AccountInfo) error {
	out := convertAccount(info)

	switch format {
	case formatJSON:
		return writeJSON(w, out)
	case formatYAML:
		return writeYAML(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", out.Email)
	fmt.Fprintf(tw, "Plan:\t%s\n", dash(out.Plan))
	if out.UUID == "" {
		fmt.Fprintf(tw, "Credits:\t%d\n", out.Credits)
	} else {
		fmt.Fprintf(tw, "Name:\t%s\n", dash(out.Name))
		fmt.Fprintf(tw, "UUID:\t%s\n", out.UUID)
		fmt.Fprintf(tw, "Time zone:\t%s\n", dash(out.TimeZone))
		fmt.Fprintf(tw, "Admin:\t%t\n", out.IsAdminRole)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
