package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// Version information set by linker during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			w := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeVersionJSON(w, info)
			case short:
				_, err := fmt.Fprintln(w, info.Version)
				return err
			default:
				return writeVersionText(w, info)
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "show only version number")
	return cmd
}

func writeVersionText(w io.Writer, info VersionInfo) error {
	fmt.Fprintf(w, "retention %s\n", info.Version)
	if info.GitCommit != "unknown" {
		fmt.Fprintf(w, "Git Commit:  %s\n", info.GitCommit)
	}
	if info.BuildTime != "unknown" {
		fmt.Fprintf(w, "Build Time:  %s\n", info.BuildTime)
	}
	_, err := fmt.Fprintf(w, "Go Version:  %s\nOS/Arch:     %s/%s\n", info.GoVersion, info.OS, info.Arch)
	return err
}

func writeVersionJSON(w io.Writer, info VersionInfo) error {
	data, err := sonic.ConfigStd.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
