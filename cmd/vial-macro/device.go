package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ObiWanKeoni/vial-gui/internal/device"
	"github.com/ObiWanKeoni/vial-gui/internal/emulator"
	"github.com/ObiWanKeoni/vial-gui/internal/layout"
	"github.com/ObiWanKeoni/vial-gui/internal/metrics"
	"github.com/ObiWanKeoni/vial-gui/internal/options"
	"github.com/ObiWanKeoni/vial-gui/internal/protocol"
)

var (
	dumpCmd = &cobra.Command{
		Use:   "dump <layout-file>",
		Short: "Read the device macros and save them as a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *device.Session, _ *emulator.Device) error {
				macros, err := s.Export()
				if err != nil {
					return err
				}
				if err := layout.WriteFile(args[0], layout.NewDocument(macros, s.Version())); err != nil {
					return err
				}
				logrus.WithFields(logrus.Fields{
					"path":   args[0],
					"macros": len(macros),
				}).Info("macros exported")
				return nil
			})
		},
	}

	restoreCmd = &cobra.Command{
		Use:   "restore <layout-file>",
		Short: "Write the macros of a layout file to the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			macros, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), func(ctx context.Context, s *device.Session, dev *emulator.Device) error {
				report, err := s.Import(ctx, macros)
				if err != nil {
					return err
				}
				entry := logrus.WithFields(logrus.Fields{
					"written":         report.Written,
					"dropped_records": report.DroppedRecords,
					"dropped_macros":  report.DroppedMacros,
					"truncated_bytes": report.Truncated,
				})
				if !report.Written {
					entry.Info("device macros already up to date")
					return nil
				}
				if err := dev.SaveFile(imagePath); err != nil {
					return err
				}
				entry.Info("macros restored")
				return nil
			})
		},
	}

	imagePath   string
	imageMemory int
	showMetrics bool
)

func init() {
	for _, cmd := range []*cobra.Command{dumpCmd, restoreCmd} {
		cmd.Flags().StringVar(&imagePath, "image", "macros.bin", "emulated device storage image")
		cmd.Flags().IntVar(&imageMemory, "memory", 900, "emulated device macro memory in bytes")
		cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print device round-trip metrics to stderr")
	}
}

// withSession opens the emulated device, reloads its macro state and runs fn.
func withSession(ctx context.Context, fn func(context.Context, *device.Session, *emulator.Device) error) error {
	version, err := options.ParseVersion(protocolVersion)
	if err != nil {
		return err
	}
	count := macroCount
	if count == 0 {
		count = 16
	}
	if count > 255 {
		return fmt.Errorf("macro count must be within 1-255, got %d", count)
	}
	if imageMemory < 0 || imageMemory > 0xFFFF {
		return fmt.Errorf("macro memory must be within 0-65535, got %d", imageMemory)
	}
	dev, err := emulator.LoadFile(imagePath, byte(count), imageMemory)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(reg)
	if err != nil {
		return err
	}
	logger := logrus.StandardLogger()
	transport := protocol.NewTransport(dev,
		protocol.WithRecorder(recorder),
		protocol.WithTransportLogger(logger),
	)
	session := device.New(transport,
		device.WithVersion(version),
		device.WithLogger(logger.WithField("image", imagePath)),
		device.WithRecorder(recorder),
	)
	if err := session.Reload(ctx); err != nil {
		return err
	}
	if err := fn(ctx, session, dev); err != nil {
		return err
	}
	if showMetrics {
		return writeMetrics(reg)
	}
	return nil
}

func writeMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stderr, mf); err != nil {
			return err
		}
	}
	return nil
}
