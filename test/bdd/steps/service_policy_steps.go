package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

type servicePolicyContext struct {
	powerNeeded int
}

func (pc *servicePolicyContext) aShipNeedsUnitsOfDefensePower(power int) error {
	pc.powerNeeded = power
	return nil
}

func (pc *servicePolicyContext) defenseRechargeShouldTakeCycles(expected int) error {
	if got := station.DefenseRechargeCycles(pc.powerNeeded); got != expected {
		return fmt.Errorf("power %d: expected %d cycles, got %d", pc.powerNeeded, expected, got)
	}
	return nil
}

func (pc *servicePolicyContext) aClassShipShouldTakeCyclesToDockAndToUndock(class, dock, undock int) error {
	gotDock, err := station.DockingCycles(station.ShipClass(class))
	if err != nil {
		return err
	}
	gotUndock, err := station.UndockingCycles(station.ShipClass(class))
	if err != nil {
		return err
	}
	if gotDock != dock || gotUndock != undock {
		return fmt.Errorf("class %d: expected %d/%d cycles, got %d/%d", class, dock, undock, gotDock, gotUndock)
	}
	return nil
}

// InitializeServicePolicyScenario registers the duration table steps
func InitializeServicePolicyScenario(ctx *godog.ScenarioContext) {
	pc := &servicePolicyContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.powerNeeded = 0
		return ctx, nil
	})

	ctx.Step(`^a ship needs (\d+) units of defense power$`, pc.aShipNeedsUnitsOfDefensePower)
	ctx.Step(`^defense recharge should take (\d+) cycles$`, pc.defenseRechargeShouldTakeCycles)
	ctx.Step(`^a class (\d+) ship should take (\d+) cycles to dock and (\d+) cycles to undock$`, pc.aClassShipShouldTakeCyclesToDockAndToUndock)
}
