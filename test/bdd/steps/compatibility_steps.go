package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

type compatibilityContext struct {
	bay      station.Bay
	ship     station.Ship
	match    string
	matchErr error
}

func (cc *compatibilityContext) reset() {
	cc.bay = station.Bay{}
	cc.ship = station.Ship{}
	cc.match = ""
	cc.matchErr = nil
}

// Given steps

func (cc *compatibilityContext) aBaySupportingInTheEnvironmentForClasses(races, env string, classMin, classMax int) error {
	environment, err := station.ParseEnvironment(env)
	if err != nil {
		return err
	}
	cc.bay = station.Bay{
		DockID:             1,
		CurrentEnvironment: environment,
		ClassMin:           station.ShipClass(classMin),
		ClassMax:           station.ShipClass(classMax),
	}
	return parseRaces(&cc.bay, races)
}

func (cc *compatibilityContext) theBayDualEnvironmentFlagIs(dual string) error {
	cc.bay.DualEnvironment = dual == "true"
	return nil
}

func (cc *compatibilityContext) aShipOfClass(race string, class int) error {
	cc.ship = station.Ship{
		FedID: 1,
		Name:  "Test Ship",
		Race:  station.ParseRace(race),
		Class: station.ShipClass(class),
	}
	return nil
}

// When steps

func (cc *compatibilityContext) iMatchTheShipAgainstTheBay() error {
	exact, err := station.IsCompatible(&cc.bay, &cc.ship)
	if err != nil {
		cc.matchErr = err
		return nil
	}
	if exact {
		cc.match = "exact"
		return nil
	}

	convertible, err := station.IsConvertible(&cc.bay, &cc.ship)
	if err != nil {
		cc.matchErr = err
		return nil
	}
	if convertible {
		cc.match = "convertible"
		return nil
	}
	cc.match = "none"
	return nil
}

// Then steps

func (cc *compatibilityContext) theMatchShouldBe(expected string) error {
	if cc.matchErr != nil {
		return fmt.Errorf("matching failed: %w", cc.matchErr)
	}
	if cc.match != expected {
		return fmt.Errorf("expected %s match, got %s", expected, cc.match)
	}
	return nil
}

func (cc *compatibilityContext) matchingShouldFailWith(tag string) error {
	if cc.matchErr == nil {
		return fmt.Errorf("expected matching to fail with %s, got %s match", tag, cc.match)
	}
	if got := shared.TagOf(cc.matchErr); string(got) != tag {
		return fmt.Errorf("expected error tag %s, got %s (%v)", tag, got, cc.matchErr)
	}
	return nil
}

// InitializeCompatibilityScenario registers the matcher steps
func InitializeCompatibilityScenario(ctx *godog.ScenarioContext) {
	cc := &compatibilityContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	ctx.Step(`^a bay supporting "([^"]*)" in the "([^"]*)" environment for classes (\d+) to (\d+)$`, cc.aBaySupportingInTheEnvironmentForClasses)
	ctx.Step(`^the bay dual environment flag is (true|false)$`, cc.theBayDualEnvironmentFlagIs)
	ctx.Step(`^a "([^"]*)" ship of class (\d+)$`, cc.aShipOfClass)

	ctx.Step(`^I match the ship against the bay$`, cc.iMatchTheShipAgainstTheBay)

	ctx.Step(`^the match should be "([^"]*)"$`, cc.theMatchShouldBe)
	ctx.Step(`^matching should fail with "([^"]*)"$`, cc.matchingShouldFailWith)
}
