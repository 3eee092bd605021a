package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/poslavu/core/cas"
	"github.com/FocuswithJustin/poslavu/core/errors"
	"github.com/FocuswithJustin/poslavu/core/result"
	"github.com/FocuswithJustin/poslavu/core/xml"
	"github.com/FocuswithJustin/poslavu/internal/logging"
	"github.com/FocuswithJustin/poslavu/internal/validation"
)

// ParseCmd converts XML to JSON or YAML.
type ParseCmd struct {
	File   string `arg:"" optional:"" default:"-" help:"Input file (default: stdin)"`
	Output string `short:"o" default:"json" enum:"json,yaml" help:"Output format (json, yaml)"`
	All    bool   `help:"Accept any number of <result> elements and emit a list"`
}

func (c *ParseCmd) Run(e *env) error {
	data, err := readInput(e, c.File)
	if err != nil {
		return err
	}

	var out any
	var count, fields int
	if c.All {
		records, err := result.ParseAll(string(data))
		if err != nil {
			logging.RecordRejected(e.ctx, c.File, "parse", err)
			return err
		}
		if len(records) == 0 {
			logging.WarnContext(e.ctx, "no_records", "source", c.File)
		}
		for _, r := range records {
			fields += r.Len()
		}
		out, count = records, len(records)
	} else {
		r, err := result.ParseBytes(data)
		if err != nil {
			logging.RecordRejected(e.ctx, c.File, "parse", err)
			return err
		}
		out, count, fields = r, 1, r.Len()
	}

	encoded, err := marshalAs(c.Output, out)
	if err != nil {
		return err
	}
	if err := writeOutput(e, encoded); err != nil {
		return err
	}
	logging.RecordsDecoded(e.ctx, c.File, "xml", c.Output, count, fields)
	return nil
}

// EncodeCmd converts JSON or YAML to XML.
type EncodeCmd struct {
	File   string `arg:"" optional:"" default:"-" help:"Input file (default: stdin)"`
	Input  string `short:"i" default:"auto" enum:"auto,json,yaml" help:"Input format (auto, json, yaml)"`
	All    bool   `help:"Input is a list of objects"`
	Wrap   string `help:"Element enclosing the results when --all is set"`
	Indent bool   `help:"Pretty-print the XML output"`
}

func (c *EncodeCmd) Run(e *env) error {
	data, err := readInput(e, c.File)
	if err != nil {
		return err
	}

	format, err := inputFormat(c.Input, data, c.File)
	if err != nil {
		return err
	}

	var fragment string
	var count, fields int
	if c.All {
		var records []*result.Record
		if err := unmarshalAs(format, data, &records); err != nil {
			logging.RecordRejected(e.ctx, c.File, "decode", err)
			return err
		}
		if len(records) == 0 {
			logging.WarnContext(e.ctx, "no_records", "source", c.File)
		}
		fragment, err = result.SerializeAll(records, c.Wrap)
		if err != nil {
			logging.RecordRejected(e.ctx, c.File, "serialize", err)
			return err
		}
		for _, r := range records {
			fields += r.Len()
		}
		count = len(records)
	} else {
		if c.Wrap != "" {
			return errors.NewValidation("wrap", "only valid with --all")
		}
		r := result.New()
		if err := unmarshalAs(format, data, r); err != nil {
			logging.RecordRejected(e.ctx, c.File, "decode", err)
			return err
		}
		fragment, err = r.Serialize()
		if err != nil {
			logging.RecordRejected(e.ctx, c.File, "serialize", err)
			return err
		}
		count, fields = 1, r.Len()
	}

	out := []byte(fragment + "\n")
	if c.Indent {
		out, err = xml.Format([]byte(fragment), xml.FormatOptions{})
		if err != nil {
			return err
		}
	}
	if err := writeOutput(e, out); err != nil {
		return err
	}
	logging.RecordsDecoded(e.ctx, c.File, format, "xml", count, fields)
	return nil
}

// CheckCmd validates a fragment without converting it.
type CheckCmd struct {
	File string `arg:"" optional:"" default:"-" help:"Input file (default: stdin)"`
}

func (c *CheckCmd) Run(e *env) error {
	data, err := readInput(e, c.File)
	if err != nil {
		return err
	}

	if v := xml.Validate(data); !v.Valid {
		first := v.Errors[0]
		err := errors.NewArgument("check", fmt.Sprintf("line %d: %s", first.Line, first.Message), nil)
		logging.RecordRejected(e.ctx, c.File, "check", err)
		return err
	}

	r, err := result.ParseBytes(data)
	if err != nil {
		logging.RecordRejected(e.ctx, c.File, "check", err)
		return err
	}
	if _, err := r.Serialize(); err != nil {
		logging.RecordRejected(e.ctx, c.File, "check", err)
		return err
	}

	_, err = fmt.Fprintf(e.stdout, "ok: %d fields\n", r.Len())
	return err
}

// DigestCmd fingerprints the canonical form of a fragment.
type DigestCmd struct {
	File   string `arg:"" optional:"" default:"-" help:"Input file (default: stdin)"`
	Verify string `help:"Expected BLAKE3 hash; fail if it does not match"`
}

func (c *DigestCmd) Run(e *env) error {
	data, err := readInput(e, c.File)
	if err != nil {
		return err
	}
	r, err := result.ParseBytes(data)
	if err != nil {
		logging.RecordRejected(e.ctx, c.File, "digest", err)
		return err
	}

	canonical, err := r.Serialize()
	if err != nil {
		logging.RecordRejected(e.ctx, c.File, "digest", err)
		return err
	}
	sum := cas.Sum([]byte(canonical))

	if c.Verify != "" {
		ok, err := cas.HashResult{BLAKE3: c.Verify}.Matches([]byte(canonical))
		if err != nil {
			return errors.NewValidation("verify", err.Error())
		}
		if !ok {
			return fmt.Errorf("digest mismatch: got %s, want %s", sum.BLAKE3, c.Verify)
		}
	}

	_, err = fmt.Fprintf(e.stdout, "blake3  %s\nsha256  %s\n", sum.BLAKE3, sum.SHA256)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	_, err := fmt.Fprintf(e.stdout, "poslavu-result version %s\n", version)
	return err
}

// Helper functions

func readInput(e *env, path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		path = "stdin"
		data, err = validation.ReadLimited(e.stdin, 0)
	} else {
		if err := validation.ValidatePath(path); err != nil {
			return nil, errors.NewValidation("file", err.Error())
		}
		var f *os.File
		f, err = os.Open(path)
		if err == nil {
			data, err = validation.ReadLimited(f, 0)
			f.Close()
		}
	}
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if err := validation.CheckText(data); err != nil {
		return nil, errors.NewArgument("read", path, err)
	}
	return data, nil
}

// inputFormat resolves "auto" by sniffing data; the converter only accepts
// JSON and YAML objects.
func inputFormat(flag string, data []byte, path string) (string, error) {
	if flag != "auto" {
		return flag, nil
	}
	f, err := validation.DetectFormat(data, path)
	if err != nil {
		return "", errors.NewArgument("detect format", path, err)
	}
	switch f {
	case validation.FormatJSON, validation.FormatYAML:
		return string(f), nil
	case validation.FormatUnknown:
		return string(validation.FormatJSON), nil
	}
	return "", errors.NewUnsupported("input format "+string(f), "encode reads JSON or YAML")
}

func writeOutput(e *env, data []byte) error {
	if _, err := e.stdout.Write(data); err != nil {
		return errors.NewIO("write", "stdout", err)
	}
	return nil
}

func marshalAs(format string, v any) ([]byte, error) {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(v)
		return data, errors.Wrap(err, "encoding yaml output")
	case "json":
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "encoding json output")
		}
		return append(data, '\n'), nil
	}
	return nil, errors.NewUnsupported("output format "+format, "")
}

func unmarshalAs(format string, data []byte, v any) error {
	switch format {
	case "yaml":
		return errors.Wrapf(yaml.Unmarshal(data, v), "decoding %s input", format)
	case "json":
		return errors.Wrapf(json.Unmarshal(bytes.TrimSpace(data), v), "decoding %s input", format)
	}
	return errors.NewUnsupported("input format "+format, "")
}
