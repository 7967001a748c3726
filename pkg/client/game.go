package client

// StartGame asks the server to deal a new round at the given difficulty
// and bet amount. The server answers with a game_state_update or an error
// envelope on the update stream.
func (c *Client) StartGame(difficulty string, bet int64) error {
	return c.send(msgStartGame, startGamePayload{
		Difficulty: difficulty,
		BetAmount:  bet,
	})
}

// Hit draws another card for the player's hand.
func (c *Client) Hit() error {
	return c.PlayerAction("hit")
}

// Stand ends the player's turn and hands play to the table.
func (c *Client) Stand() error {
	return c.PlayerAction("stand")
}

// PlayerAction sends a raw action verb. Hit and Stand are the ones the
// server understands.
func (c *Client) PlayerAction(action string) error {
	return c.send(msgPlayerAction, playerActionPayload{Action: action})
}

// ResetGame abandons the current session state and starts over with a
// fresh bankroll.
func (c *Client) ResetGame() error {
	return c.send(msgResetGame, nil)
}
