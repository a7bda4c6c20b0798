package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"diskward/internal/doctor"
	"diskward/internal/execx"
	"diskward/internal/notify"
	"diskward/internal/orchestrator"
	"diskward/internal/report"
	"diskward/internal/tui"
	"diskward/internal/version"
	"diskward/internal/volume"
	"diskward/internal/winsys"
)

func main() {
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.Info())
			return
		case "doctor":
			os.Exit(runDoctor())
		case "help", "--help", "-h":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	os.Exit(runCheck(os.Args[1:]))
}

// runCheck is the default command: scan every fixed drive and schedule
// repairs for the ones with errors.
func runCheck(args []string) int {
	fs := flag.NewFlagSet("diskward", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "print mutating commands instead of executing them")
	interactive := fs.Bool("interactive", false, "show live progress while scanning")
	idleMinutes := fs.Int("idle-minutes", 10, "system idle minutes before a scheduled repair starts")
	jsonOut := fs.Bool("json", false, "print the run summary as JSON")
	noPopup := fs.Bool("no-popup", false, "suppress the desktop notification")
	slackURL := fs.String("slack-webhook", "", "post the run summary to this Slack webhook URL")
	discordURL := fs.String("discord-webhook", "", "post the run summary to this Discord webhook URL")
	_ = fs.Parse(args)

	elevated, err := winsys.IsElevated()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !elevated {
		fmt.Fprintln(os.Stderr, "Error: administrator rights are required")
		return 1
	}

	drives, err := winsys.FixedDrives()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(drives) == 0 {
		fmt.Println("No fixed drives found; nothing to check.")
		return 0
	}

	var inv execx.Invoker = execx.Exec{}
	if *dryRun {
		inv = execx.DryRun{Invoker: execx.Exec{}, Out: dryRunWriter(*jsonOut)}
	}

	ctx := context.Background()
	reboot := volume.RebootRequired(volume.SystemDrive(), pagefileDrives(ctx, inv))
	pass := orchestrator.New(inv, reboot, *idleMinutes)

	styled := report.StyledOutput()
	// The live view needs a terminal; with redirected output the pass runs
	// plain and the report below covers it.
	usedTUI := *interactive && styled
	var results []orchestrator.DriveResult
	if usedTUI {
		results, err = tui.Run(drives, func(observer func(orchestrator.Event)) ([]orchestrator.DriveResult, error) {
			pass.SetObserver(observer)
			return pass.Run(ctx, drives)
		})
	} else {
		results, err = pass.Run(ctx, drives)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sum := orchestrator.Summarize(results)

	out, jerr := renderSummary(results, sum, *jsonOut, usedTUI, styled)
	if jerr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", jerr)
		return 1
	}
	fmt.Print(out)

	// Notification failures never change the exit status.
	if sum.RebootPending() && !*noPopup {
		if perr := notify.Popup(ctx, inv, sum); perr != nil {
			warnf("desktop notification failed: %v", perr)
		}
	}
	if *slackURL != "" {
		if werr := notify.NewSlack().SendSummary(*slackURL, sum); werr != nil {
			warnf("slack notification failed: %v", werr)
		}
	}
	if *discordURL != "" {
		if werr := notify.NewDiscord().SendSummary(*discordURL, sum); werr != nil {
			warnf("discord notification failed: %v", werr)
		}
	}

	return 0
}

// renderSummary picks the post-pass output: JSON when requested, otherwise
// the plain report unless the live view already showed one.
func renderSummary(results []orchestrator.DriveResult, sum orchestrator.Summary, jsonOut, usedTUI, styled bool) (string, error) {
	if jsonOut {
		out, err := report.JSON(sum)
		if err != nil {
			return "", err
		}
		return out + "\n", nil
	}
	if usedTUI {
		return "", nil
	}
	return report.Render(results, sum, styled), nil
}

// dryRunWriter keeps dry-run traces off stdout when stdout carries the JSON
// document.
func dryRunWriter(jsonOut bool) io.Writer {
	if jsonOut {
		return os.Stderr
	}
	return os.Stdout
}

// pagefileDrives enumerates pagefile hosts. A failure here narrows the
// reboot-required classification to the boot drive instead of aborting.
func pagefileDrives(ctx context.Context, inv execx.Invoker) []string {
	paths, err := volume.Pagefiles(ctx, inv)
	if err != nil {
		warnf("pagefile enumeration failed, classifying only the boot drive: %v", err)
		return nil
	}
	return volume.DrivesOf(paths)
}

func runDoctor() int {
	rep := doctor.Run()
	for _, r := range rep.Results {
		line := fmt.Sprintf("[%s] %s", r.Status, r.Name)
		if r.Detail != "" {
			line += ": " + r.Detail
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d passed, %d warnings, %d failed\n", rep.Passed, rep.Warned, rep.Failed)
	if !rep.Healthy() {
		return 1
	}
	return 0
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func printHelp() {
	fmt.Println(`diskward - check fixed drives and schedule filesystem repairs

Usage:
  diskward [flags]          Scan all fixed drives and schedule repairs
  diskward doctor           Verify required OS utilities and privileges
  diskward version          Show version information
  diskward help             Show this help message

Flags:
  --dry-run                 Print mutating commands instead of executing them
  --interactive             Show live progress while scanning
  --idle-minutes            Idle minutes before a scheduled repair starts (default 10)
  --json                    Print the run summary as JSON
  --no-popup                Suppress the desktop notification
  --slack-webhook URL       Post the run summary to a Slack webhook
  --discord-webhook URL     Post the run summary to a Discord webhook

Drives hosting the boot volume or a pagefile are repaired at the next
restart; other drives get a one-shot task that runs once the system has
been idle and then deletes itself. Requires administrator rights.`)
}
