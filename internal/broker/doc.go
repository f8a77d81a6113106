// Package broker distributes agent run events over named topics.
//
// Two implementations share the Broker interface:
//
//   - Local keeps everything in process. Each subscription owns a buffered
//     channel and a goroutine that feeds its hook; a subscriber that stays
//     full for longer than the slow subscriber timeout is dropped so a stuck
//     consumer can't stall a run.
//   - NATS publishes the JSON form of each event (see events.ToJSON) on a
//     subject named after the topic, so runs can be watched from another
//     process with `brainstorm watch`.
//
// A topic is an events.Publisher and can be handed straight to an agent:
//
//	topic := broker.Local().Topic(ctx, "agents.poet")
//	sub, err := topic.Subscribe(ctx, events.LoggingHook(nil))
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
//
//	poet, err := agent.New(agent.Name("poet"), agent.AI(model), agent.Publisher(topic))
package broker
