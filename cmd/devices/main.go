package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/peerlink/interop/pkg/config"
	"github.com/peerlink/interop/pkg/interop"
	"github.com/peerlink/interop/pkg/media"
)

var baseFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "path to config file",
	},
	&cli.StringFlag{
		Name:    "config-body",
		Usage:   "config in YAML, typically passed in as an environment var",
		EnvVars: []string{"PEERLINK_CONFIG"},
	},
}

func main() {
	app := &cli.App{
		Name:  "devices",
		Usage: "inspect video capture devices through the interop boundary",
		Flags: baseFlags,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list capture devices",
				Action: listDevices,
			},
			{
				Name:      "formats",
				Usage:     "list the capture formats of one device",
				ArgsUsage: "<device-id>",
				Action:    listFormats,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getConfigString(c *cli.Context) (string, error) {
	confString := c.String("config-body")
	if confString == "" {
		if path := c.String("config"); path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			confString = string(content)
		}
	}
	return confString, nil
}

func initLibrary(c *cli.Context) error {
	confString, err := getConfigString(c)
	if err != nil {
		return err
	}
	// validate eagerly so a bad file fails before the engine comes up
	if _, err = config.NewConfig(confString); err != nil {
		return err
	}
	if res := interop.Initialize(confString); res != interop.ResultSuccess {
		return fmt.Errorf("initialize failed: %s", res)
	}
	return nil
}

func listDevices(c *cli.Context) error {
	if err := initLibrary(c); err != nil {
		return err
	}
	defer interop.Shutdown()

	count := 0
	res := interop.EnumerateVideoCaptureDevices(
		func(id, name string) {
			count++
			fmt.Printf("%-24s %s\n", id, name)
		},
		func() {
			fmt.Printf("%d device(s)\n", count)
		},
	)
	if res != interop.ResultSuccess {
		return fmt.Errorf("enumeration failed: %s", res)
	}
	return nil
}

func listFormats(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one device id")
	}
	if err := initLibrary(c); err != nil {
		return err
	}
	defer interop.Shutdown()

	deviceID := c.Args().First()
	count := 0
	res := interop.EnumerateVideoCaptureFormats(deviceID,
		func(width, height uint32, framerate float64, fourcc uint32) {
			count++
			fmt.Printf("%4dx%-4d @ %5.2f fps  %s\n", width, height, framerate, media.FourCC(fourcc))
		},
		func() {
			fmt.Printf("%d format(s)\n", count)
		},
	)
	if res != interop.ResultSuccess {
		return fmt.Errorf("enumeration failed: %s", res)
	}
	return nil
}
