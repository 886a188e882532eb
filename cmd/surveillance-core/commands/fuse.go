package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sentinel-surveillance/core/pkg/apperr"
	"github.com/sentinel-surveillance/core/pkg/fusion"
)

var (
	fuseCBSPath string
	fuseEMRPath string
)

var fuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse a CBS signal and/or an EMR event into a canonical record",
	Long: `Reads a CBS signal from --cbs, an EMR event from --emr, or both, and
fuses them into one canonical FusedRecord, printed to stdout as JSON. At
least one of --cbs or --emr is required.`,
	RunE: runFuse,
}

func init() {
	fuseCmd.Flags().StringVar(&fuseCBSPath, "cbs", "", "path to a CBS signal JSON file")
	fuseCmd.Flags().StringVar(&fuseEMRPath, "emr", "", "path to an EMR event JSON file")
}

func runFuse(cmd *cobra.Command, args []string) error {
	if fuseCBSPath == "" && fuseEMRPath == "" {
		return apperr.NewValidation("fuse requires --cbs, --emr, or both")
	}

	cfg, err := loadConfig(viper.New())
	if err != nil {
		return err
	}

	ctx := context.Background()

	var cbs *fusion.CBSSignal
	if fuseCBSPath != "" {
		cbs = &fusion.CBSSignal{}
		if err := readJSONFile(fuseCBSPath, cbs); err != nil {
			return err
		}
	}

	var emr *fusion.EMREvent
	if fuseEMRPath != "" {
		emr = &fusion.EMREvent{}
		if err := readJSONFile(fuseEMRPath, emr); err != nil {
			return err
		}
	}

	archive, err := buildArchive(ctx, cfg.Coldstore)
	if err != nil {
		return err
	}

	opts := []fusion.Option{fusion.WithConfig(cfg)}
	if archive != nil {
		opts = append(opts, fusion.WithArchive(archive))
	}
	engine := fusion.New(opts...)

	subjectID := ""
	switch {
	case cbs != nil && cbs.SubjectID != "":
		subjectID = cbs.SubjectID
	case emr != nil && emr.SubjectID != "":
		subjectID = emr.SubjectID
	}

	record, err := engine.Fuse(ctx, cbs, emr, nil, subjectID)
	if err != nil {
		return err
	}

	engine.SweepRetention(ctx)

	return printJSON(record)
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A timestamp parse failure inside a custom UnmarshalJSON surfaces
		// as an *apperr.Error: return it unwrapped so exitCodeFor maps it
		// to exit code 2 instead of 3.
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
