// shiftctl 运维命令行：手动发布、审批补丁、归档与触发生成
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storeshift_v1_202610/internal/app"
	"storeshift_v1_202610/internal/config"
	"storeshift_v1_202610/internal/middleware"
	"storeshift_v1_202610/internal/service"
	"storeshift_v1_202610/pkg/utils"
)

var (
	actorID  string
	weekFlag string
	runIDs   []string
	dayFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "shiftctl",
	Short:         "Operate the shift lifecycle from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var publishCmd = &cobra.Command{
	Use:   "publish <run_id>",
	Short: "Publish every draft shift of a generation run",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(ctx context.Context, c *app.Container, args []string) error {
		actor, err := c.Services.Directory.ResolveActor(ctx, actorID)
		if err != nil {
			return err
		}
		result, err := c.Services.Publication.Publish(ctx, actor, args[0])
		return printResult(result, err)
	}),
}

var approvePatchCmd = &cobra.Command{
	Use:   "approve-patch <store_id>",
	Short: "Publish the remaining draft shifts of a store week",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(ctx context.Context, c *app.Container, args []string) error {
		actor, err := c.Services.Directory.ResolveActor(ctx, actorID)
		if err != nil {
			return err
		}
		result, err := c.Services.Patches.ApprovePatch(ctx, actor, args[0], weekFlag, runIDs)
		return printResult(result, err)
	}),
}

var archiveWeekCmd = &cobra.Command{
	Use:   "archive-week",
	Short: "Archive the previous week and settle hour balances",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(ctx context.Context, c *app.Container, _ []string) error {
		asOf, err := resolveDay(c.Config, dayFlag)
		if err != nil {
			return err
		}
		result, err := c.Services.Archival.ArchiveWeek(ctx, asOf)
		return printResult(result, err)
	}),
}

var runGenerationCmd = &cobra.Command{
	Use:   "run-generation",
	Short: "Generate next week's schedule for every enabled store",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(ctx context.Context, c *app.Container, _ []string) error {
		now, err := resolveDay(c.Config, dayFlag)
		if err != nil {
			return err
		}
		result, err := c.Services.Generation.RunWeeklyGeneration(ctx, now)
		return printResult(result, err)
	}),
}

var tokenCmd = &cobra.Command{
	Use:   "token <user_id>",
	Short: "Issue an access token for an active employee",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(ctx context.Context, c *app.Container, args []string) error {
		actor, err := c.Services.Directory.ResolveActor(ctx, args[0])
		if err != nil {
			return err
		}
		token, err := middleware.GenerateAccessToken(actor.UserID, actor.UserName, actor.Role)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}),
}

func init() {
	publishCmd.Flags().StringVar(&actorID, "as", "", "acting employee id (admin or super_admin)")
	_ = publishCmd.MarkFlagRequired("as")

	approvePatchCmd.Flags().StringVar(&actorID, "as", "", "acting employee id (admin or super_admin)")
	approvePatchCmd.Flags().StringVar(&weekFlag, "week", "", "any day of the target week, YYYY-MM-DD")
	approvePatchCmd.Flags().StringSliceVar(&runIDs, "run-id", nil, "generation runs to mark published")
	_ = approvePatchCmd.MarkFlagRequired("as")
	_ = approvePatchCmd.MarkFlagRequired("week")

	archiveWeekCmd.Flags().StringVar(&dayFlag, "as-of", "", "reference day, YYYY-MM-DD (default today)")
	runGenerationCmd.Flags().StringVar(&dayFlag, "now", "", "reference day, YYYY-MM-DD (default today)")

	rootCmd.AddCommand(publishCmd, approvePatchCmd, archiveWeekCmd, runGenerationCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withContainer 加载配置并组装依赖后执行命令
func withContainer(run func(ctx context.Context, c *app.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
		defer cancel()

		c, err := app.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer c.Close()
		return run(ctx, c, args)
	}
}

func resolveDay(cfg *config.Config, day string) (time.Time, error) {
	if day == "" {
		return time.Now().In(cfg.Location()), nil
	}
	return utils.ParseDate(day)
}

// printResult NoOp 不算失败，结果照常输出
func printResult(result any, err error) error {
	if err != nil && !errors.Is(err, service.ErrNoOp) {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
