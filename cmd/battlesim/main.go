// Package main provides a headless battle simulator: it builds a trainer,
// fights wild creatures or enemy trainers with an automatic pilot, prints
// the battle log, and optionally saves the result to PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tamer/internal/config"
	"github.com/cory-johannsen/tamer/internal/game/ai"
	"github.com/cory-johannsen/tamer/internal/game/battle"
	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/condition"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/enemy"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/session"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
	"github.com/cory-johannsen/tamer/internal/observability"
	"github.com/cory-johannsen/tamer/internal/scripting"
	"github.com/cory-johannsen/tamer/internal/storage/postgres"
)

const aiScope = "ai"

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	name := flag.String("name", "Red", "player trainer name")
	starter := flag.String("starter", "charmander", "starter species id")
	wildSpecies := flag.String("wild", "", "wild species id; empty picks one at random")
	wildLevel := flag.Int("wild-level", 3, "wild creature level")
	wildCount := flag.Int("wild-count", 1, "number of wild creatures per encounter")
	enemyID := flag.String("enemy", "", "enemy trainer template id; overrides -wild")
	battles := flag.Int("battles", 1, "number of encounters to fight")
	maxTurns := flag.Int("max-turns", 100, "turn cap per battle")
	save := flag.Bool("save", false, "save the trainer to PostgreSQL after every battle")
	loadID := flag.String("load", "", "trainer id to load from PostgreSQL instead of starting fresh")
	interactive := flag.Bool("interactive", false, "read battle commands from stdin instead of using the automatic pilot")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	logs := observability.Split(logger)

	var src dice.Source
	if cfg.Battle.Seed != 0 {
		src = dice.NewSeededSource(cfg.Battle.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logs.Dice)

	// Load content
	contentStart := time.Now()
	cat, err := catalog.Load(ctx, cfg.Content.CatalogDir(), logs.Catalog)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	conditions, err := condition.LoadDirectory(cfg.Content.ConditionsDir())
	if err != nil {
		logger.Fatal("loading condition definitions", zap.Error(err))
	}
	items, err := inventory.LoadRegistry(cfg.Content.ItemsDir())
	if err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}
	skills, err := trainer.LoadSkills(cfg.Content.TrainerSkillsDir())
	if err != nil {
		logger.Fatal("loading trainer skills", zap.Error(err))
	}
	enemies, err := enemy.LoadRegistry(cfg.Content.EnemiesDir())
	if err != nil {
		logger.Fatal("loading enemy trainers", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("species", len(cat.AllSpecies())),
		zap.Int("moves", len(cat.AllMoves())),
		zap.Int("items", len(items.AllItems())),
		zap.Int("enemies", len(enemies.IDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Lua AI preconditions and HTN domains
	scriptMgr := scripting.NewManager(roller, logs.Scripting)
	defer scriptMgr.Close()
	if err := scriptMgr.LoadScope(aiScope, cfg.Content.AIScriptsDir(), cfg.Scripting.InstructionLimit); err != nil {
		logger.Fatal("loading AI scripts", zap.Error(err))
	}
	planners, err := ai.LoadRegistry(cfg.Content.AIDir(), scriptMgr, aiScope)
	if err != nil {
		logger.Fatal("loading AI domains", zap.Error(err))
	}
	var domainRefs []string
	for _, id := range enemies.IDs() {
		tmpl, _ := enemies.Template(id)
		domainRefs = append(domainRefs, tmpl.AIDomain)
	}
	if missing := planners.Missing(domainRefs...); len(missing) > 0 {
		logger.Fatal("enemy trainers reference unknown AI domains", zap.Strings("domains", missing))
	}
	logger.Info("AI loaded", zap.Strings("domains", planners.IDs()))

	factory := creature.NewFactory(cat, nil, src, logs.Battle)
	deps := battle.Deps{
		Factory:    factory,
		Roller:     roller,
		Skills:     skills,
		Items:      items,
		Conditions: conditions,
		Planners:   planners,
		Logger:     logs.Battle,
		Config:     cfg.Battle.Engine(),
	}

	var repo session.SaveRepository
	if *save || *loadID != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database, logs.Storage)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 2*time.Second); err != nil {
			logger.Fatal("database health check", zap.Error(err))
		}
		repo = postgres.NewSaveRepository(pool.DB())
	}

	sess, err := session.NewGame(deps, *name, *starter, repo)
	if err != nil {
		logger.Fatal("creating game", zap.Error(err))
	}
	if *loadID != "" {
		if err := sess.Load(ctx, *loadID); err != nil {
			logger.Fatal("loading save", zap.String("trainer", *loadID), zap.Error(err))
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printUpdates(sess.Updates())
	}()

	tr := sess.Trainer()
	fmt.Printf("%s (level %d) sets out with %s. Trainer id %s\n", tr.Name, tr.Level, tr.Party[0].DisplayName(), tr.ID)

	p := &pilot{sess: sess, src: src, maxTurns: *maxTurns}
	con := newConsole(sess, os.Stdin, os.Stdout)
	for i := range *battles {
		tr := sess.Trainer()
		if tr.AllFainted() || tr.CurrentHP == 0 {
			tr.FullHeal()
			fmt.Println("-- healed at the center --")
		}

		var err error
		if *enemyID != "" {
			err = startTrainer(ctx, sess, enemies, factory, *enemyID)
		} else {
			err = startWild(ctx, sess, factory, src, *wildSpecies, *wildLevel, *wildCount)
		}
		if err != nil {
			logger.Fatal("starting battle", zap.Int("battle", i+1), zap.Error(err))
		}

		var phase battle.Phase
		if *interactive {
			phase, err = con.run(ctx)
		} else {
			phase, err = p.run(ctx)
		}
		if errors.Is(err, errQuit) {
			sess.EndBattle()
			break
		}
		if err != nil {
			logger.Error("battle aborted", zap.Int("battle", i+1), zap.Error(err))
			break
		}
		sess.EndBattle()
		logger.Info("battle finished",
			zap.Int("battle", i+1),
			zap.String("phase", string(phase)),
		)

		if *save {
			if err := sess.Save(ctx); err != nil {
				logger.Error("saving trainer", zap.Error(err))
			}
		}
	}

	if err := sess.Close(); err != nil {
		logger.Error("closing session", zap.Error(err))
	}
	wg.Wait()

	tr = sess.Trainer()
	fmt.Printf("\n%s: level %d, %d/%d exp, %d skill points\n", tr.Name, tr.Level, tr.Exp, tr.ExpToNextLevel, tr.SkillPoints)
	for _, c := range tr.Party {
		fmt.Printf("  %-12s lv %-3d hp %d/%d exp %d/%d\n", c.DisplayName(), c.Level, c.CurrentHP, c.MaxHP, c.Exp, c.ExpToNextLevel)
	}
	fmt.Printf("  bag: %s\n", stockSummary(sess.Inventory()))
	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}

func startTrainer(ctx context.Context, sess *session.Session, enemies *enemy.Registry, f *creature.Factory, id string) error {
	tmpl, err := enemies.Template(id)
	if err != nil {
		return fmt.Errorf("enemy trainer %q: %w", id, err)
	}
	foe, err := enemy.New(tmpl, f)
	if err != nil {
		return fmt.Errorf("building enemy trainer %q: %w", id, err)
	}
	_, err = sess.StartTrainerBattle(ctx, foe)
	return err
}

func startWild(ctx context.Context, sess *session.Session, f *creature.Factory, src dice.Source, speciesID string, level, count int) error {
	wild, err := encounter(f, src, speciesID, level, count)
	if err != nil {
		return fmt.Errorf("building wild encounter: %w", err)
	}
	_, err = sess.StartWildBattle(ctx, wild)
	return err
}

// encounter builds count wild creatures of speciesID, or of a random species
// when speciesID is empty.
func encounter(f *creature.Factory, src dice.Source, speciesID string, level, count int) ([]*creature.Creature, error) {
	all := f.Catalog().AllSpecies()
	wild := make([]*creature.Creature, 0, count)
	for range max(count, 1) {
		id := speciesID
		if id == "" {
			id = all[src.Intn(len(all))].ID
		}
		c, err := f.New(id, level, true)
		if err != nil {
			return nil, err
		}
		wild = append(wild, c)
	}
	return wild, nil
}

// printUpdates prints each new battle log line as updates arrive, until the
// feed closes.
func printUpdates(updates <-chan session.Update) {
	var battleID string
	var prev []string
	for u := range updates {
		if u.BattleID != battleID {
			battleID = u.BattleID
			prev = nil
			fmt.Printf("\n== battle %s ==\n", battleID)
		}
		for _, line := range newLines(prev, u.Log) {
			fmt.Printf("[turn %d] %s\n", u.Turn, line)
		}
		prev = u.Log
		if u.Phase.Terminal() {
			fmt.Printf("== %s ==\n", u.Phase)
		}
	}
}
