package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sentinel-surveillance/core/pkg/apperr"
	"github.com/sentinel-surveillance/core/pkg/clock"
	"github.com/sentinel-surveillance/core/pkg/dispatch"
)

var dispatchFromTopic string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Dispatch the alert(s) read from --from to every configured channel",
	Long: `Reads one Alert, or a JSON array of Alerts, from the file named by
--from and fans each out to every configured channel, printing a
per-channel, per-alert delivery outcome map as JSON.`,
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchFromTopic, "from", "", "path to an Alert JSON object or array")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	if dispatchFromTopic == "" {
		return apperr.NewValidation("dispatch requires --from")
	}

	cfg, err := loadConfig(viper.New())
	if err != nil {
		return err
	}

	alerts, err := readAlerts(dispatchFromTopic)
	if err != nil {
		return err
	}

	channels := []dispatch.Channel{}
	if cfg.Dispatch.WebhookURL != "" {
		dedup := time.Duration(cfg.Dispatch.DedupWindowSeconds) * time.Second
		channels = append(channels, dispatch.NewChatChannel(cfg.Dispatch.WebhookURL, cfg.Dispatch.ChannelRef, dedup, clock.Real{}))
	}

	distributor := dispatch.New(
		dispatch.WithChannels(channels...),
		dispatch.WithChannelTimeout(time.Duration(cfg.Dispatch.ChannelTimeoutSeconds)*time.Second),
	)

	ctx := context.Background()
	outcomes := make([]map[string]interface{}, 0, len(alerts))
	for _, a := range alerts {
		results, err := distributor.Dispatch(ctx, a)
		if err != nil {
			return err
		}
		outcomes = append(outcomes, map[string]interface{}{
			"alert_id": a.AlertID,
			"results":  results,
		})
	}

	return printJSON(outcomes)
}

func readAlerts(path string) ([]dispatch.Alert, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var batch []dispatch.Alert
	if err := json.Unmarshal(data, &batch); err == nil {
		return batch, nil
	}

	var single dispatch.Alert
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return []dispatch.Alert{single}, nil
}
