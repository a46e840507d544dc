// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// Genomes are layered feed-forward brains: every synapse points from an earlier
// layer to a later one, so a network is evaluated one layer at a time. Genes are
// aligned across genomes by innovation numbers handed out by a run-scoped
// InnovationHistory, species are formed by first-match against a compatibility
// threshold, and that threshold is tuned every generation towards a target
// species count.
//
// The implementation lives in the neat subpackage. Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// mySimulation implements neat.Simulation[U]: it fills inputs, runs the
//	// network and accumulates fitness until it marks the genome done.
//	pop, err := neat.NewPopulation(config, neat.Singleton[*MyState](mySimulation{}))
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	champion, err := pop.Evolve(ctx, state, 100)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Println(champion.Chart())
package neat
