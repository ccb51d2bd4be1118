package main

import (
	"fmt"
	"strings"
	"sync"

	"atelier/internal/config"
	"atelier/internal/logging"
	"atelier/internal/staff"
	"atelier/internal/store"
	"atelier/internal/templates"
	"atelier/internal/workflow"
)

type commandContext struct {
	configFlag    *string
	staffIDFlag   *string
	staffNameFlag *string
	roleFlag      *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, staffIDFlag, staffNameFlag, roleFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		staffIDFlag:   staffIDFlag,
		staffNameFlag: staffNameFlag,
		roleFlag:      roleFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// actor resolves the acting identity: flags first, config operator second.
func (c *commandContext) actor() (staff.Actor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return staff.Actor{}, err
	}

	id := cfg.Operator.StaffID
	name := cfg.Operator.StaffName
	roleValue := cfg.Operator.Role
	if c.staffIDFlag != nil && strings.TrimSpace(*c.staffIDFlag) != "" {
		id = strings.TrimSpace(*c.staffIDFlag)
	}
	if c.staffNameFlag != nil && strings.TrimSpace(*c.staffNameFlag) != "" {
		name = strings.TrimSpace(*c.staffNameFlag)
	}
	if c.roleFlag != nil && strings.TrimSpace(*c.roleFlag) != "" {
		roleValue = strings.TrimSpace(*c.roleFlag)
	}

	if strings.TrimSpace(id) == "" {
		return staff.Actor{}, fmt.Errorf("no acting staff: set [operator] in the config or pass --staff-id")
	}
	role, ok := staff.ParseRole(roleValue)
	if !ok {
		return staff.Actor{}, fmt.Errorf("unknown role %q (admin, supervisor, checker, tailor)", roleValue)
	}
	if strings.TrimSpace(name) == "" {
		name = id
	}
	return staff.Actor{ID: id, Name: name, Role: role}, nil
}

// engine bundles the wired dependencies a command needs.
type engine struct {
	cfg        *config.Config
	store      *store.Store
	templates  *templates.Provider
	controller *workflow.Controller
}

// withEngine opens the store and wires the controller for the duration of fn.
func (c *commandContext) withEngine(fn func(*engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	provider, err := templates.NewProvider(cfg.Workshop.TemplatesPath)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(&engine{
		cfg:        cfg,
		store:      st,
		templates:  provider,
		controller: workflow.NewController(st, st, provider, logger),
	})
}
