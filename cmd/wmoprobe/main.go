// wmoprobe is a CLI utility for inspecting decoded world models and running
// portal/point queries against their groups.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/wmo-go/internal/config"
	"github.com/Faultbox/wmo-go/internal/logger"
	"github.com/Faultbox/wmo-go/internal/world"
	"github.com/Faultbox/wmo-go/pkg/math"
	"github.com/Faultbox/wmo-go/pkg/wmo"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		cmdInfo(cfg)
	case "locate":
		cmdLocate(cfg, args[1:])
	case "portal":
		cmdPortal(cfg, args[1:])
	case "initconfig":
		cmdInitConfig(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wmoprobe - world-model portal/BSP query utility

Usage:
  wmoprobe [flags] <command> [options]

Flags:
  -config path   Explicit config file
  -world path    World definition (JSON) to load
  -group n       Group index to query
  -max d         Max portal distance (0 = unbounded)
  -debug         Enable debug logging

Commands:
  info                     Show world summary (groups, portals, bounds)
  locate -point x,y,z      Find the group containing a point
  portal -point x,y,z      Find the closest portal of the selected group
  initconfig               Write the current config to the user config dir

Examples:
  wmoprobe -world dungeon.json info
  wmoprobe -world dungeon.json locate -point 12,3,-4
  wmoprobe -world dungeon.json -group 2 -max 5 portal -point 12,3,-4`)
}

func loadWorld(cfg *config.Config) *world.Container {
	data, err := os.ReadFile(cfg.World.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var def wmo.WorldDef
	if err := json.Unmarshal(data, &def); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing %s: %v\n", cfg.World.Path, err)
		os.Exit(1)
	}

	container, err := world.NewContainer(&def)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return container
}

func parsePoint(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var coords [3]float32
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		coords[i] = float32(v)
	}
	return math.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func cmdInfo(cfg *config.Config) {
	container := loadWorld(cfg)
	defer container.Close()

	fmt.Printf("World: %s\n", cfg.World.Path)
	fmt.Printf("Groups: %d  Portals: %d\n\n", len(container.Groups()), len(container.Portals()))
	for _, g := range container.Groups() {
		b := g.Bounds()
		fmt.Printf("  [%d] %s id=%d portals=%d bounds=(%.1f,%.1f,%.1f)..(%.1f,%.1f,%.1f)\n",
			g.Index(), g.Path(), g.ID(), len(g.PortalRefs()),
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
}

func cmdLocate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	pointFlag := fs.String("point", "0,0,0", "Query point x,y,z")
	fs.Parse(args)

	point, err := parsePoint(*pointFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	container := loadWorld(cfg)
	defer container.Close()

	group, ok := container.GroupAt(point)
	if !ok {
		fmt.Println("No group contains the point")
		return
	}
	fmt.Printf("Point (%g,%g,%g) is in group %d (%s)\n",
		point.X, point.Y, point.Z, group.Index(), group.Path())
}

func cmdPortal(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("portal", flag.ExitOnError)
	pointFlag := fs.String("point", "0,0,0", "Query point x,y,z")
	fs.Parse(args)

	point, err := parsePoint(*pointFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	container := loadWorld(cfg)
	defer container.Close()

	tr, ok := container.ResolveTransition(cfg.Query.Group, point, cfg.Query.MaxDistance)
	if !ok {
		fmt.Println("No portal found")
		return
	}

	side := "front"
	if tr.Hit.Distance < 0 {
		side = "back"
	}
	fmt.Printf("Closest portal: %d, signed distance %g (%s side)\n",
		tr.Hit.Ref.Index, tr.Hit.Distance, side)
	fmt.Printf("Crossing leads into group %d (%s)\n", tr.To.Index(), tr.To.Path())
}

func cmdInitConfig(cfg *config.Config) {
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config written to %s\n", config.ConfigDir())
}
