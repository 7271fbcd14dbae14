package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"gopkg.in/yaml.v2"

	"github.com/ledstudio/matrixpaint/api"
	"github.com/ledstudio/matrixpaint/pattern"
)

type app struct {
	Config  pattern.Config
	Client  mqtt.Client
	Pattern *pattern.Pattern
	Player  *pattern.Player
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
}

func (a *app) readConfig(configPath string) {
	f, err := os.Open(configPath)
	if err != nil {
		panic(err)
	}

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&a.Config)
	if err != nil {
		panic(err)
	}
}

func (a *app) loadPattern(projectPath string) {
	if projectPath != "" {
		f, err := os.Open(projectPath)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		a.Pattern, err = pattern.Load(f)
		if err != nil {
			panic(err)
		}
		return
	}

	// No project file; start with a single layer showing a gradient sweep.
	a.Pattern = pattern.NewPattern(a.Config.Matrix.Width, a.Config.Matrix.Height)
	if _, err := a.Pattern.AddLayer("background"); err != nil {
		panic(err)
	}
	action := pattern.DesignAction{Name: "gradient"}
	if err := a.Pattern.ApplyAction(context.Background(), action); err != nil {
		panic(err)
	}
}

func (a *app) run() {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
	if err := a.Player.Run(context.Background()); err != nil {
		log.Printf("player stopped: %v", err)
	}
}

func main() {
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	projectPath := flag.String("project", "", "Pattern project file to stream.")
	flag.Parse()

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	log.Printf("Config: %+v", a.Config)

	a.loadPattern(*projectPath)
	a.Pattern.Subscribe(func(e pattern.Event) {
		log.Printf("pattern changed: kind=%d layer=%q frame=%d", e.Kind, e.Layer, e.Frame)
	})

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("matrixpaint").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	client := mqtt.NewClient(options)

	a.Client = client
	a.Player = pattern.NewPlayer(client, a.Pattern, a.Config.Mqtt.Topics.Stream, a.Config.Stream.CrossfadeSteps)

	go api.NewApi(a.Pattern).Serve(":3000")

	a.run()
}
