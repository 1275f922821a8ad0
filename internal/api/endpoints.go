package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/DoyleJ11/gamesync/pkg/types"
)

func gamePath(gameID, suffix string) string {
	return fmt.Sprintf("/game/%s/%s", url.PathEscape(gameID), suffix)
}

func (c *Client) CreateGame(ctx context.Context, gameType string) (types.CreateGameResponse, error) {
	var out types.CreateGameResponse
	err := c.Post(ctx, fmt.Sprintf("/game/%s/create", url.PathEscape(gameType)), struct{}{}, &out)
	return out, err
}

func (c *Client) JoinGame(ctx context.Context, code string) (types.JoinGameResponse, error) {
	var out types.JoinGameResponse
	err := c.Post(ctx, "/game/join", types.JoinGameRequest{Code: code}, &out)
	return out, err
}

func (c *Client) LobbyStatus(ctx context.Context, gameID string) (types.LobbyStatus, error) {
	var out types.LobbyStatus
	err := c.Get(ctx, gamePath(gameID, "lobby-status"), &out)
	return out, err
}

func (c *Client) StartGame(ctx context.Context, gameID string) (types.StartGameResponse, error) {
	var out types.StartGameResponse
	err := c.Post(ctx, gamePath(gameID, "start"), struct{}{}, &out)
	return out, err
}

func (c *Client) Ready(ctx context.Context, gameID string) (types.MessageResponse, error) {
	var out types.MessageResponse
	err := c.Post(ctx, gamePath(gameID, "ready"), struct{}{}, &out)
	return out, err
}

func (c *Client) Heartbeat(ctx context.Context, gameID string) (types.MessageResponse, error) {
	var out types.MessageResponse
	err := c.Patch(ctx, gamePath(gameID, "heartbeat"), struct{}{}, &out)
	return out, err
}

func (c *Client) Leave(ctx context.Context, gameID string) (types.MessageResponse, error) {
	var out types.MessageResponse
	err := c.Post(ctx, gamePath(gameID, "leave"), struct{}{}, &out)
	return out, err
}

// Status fetches the game-specific status payload.
func Status[T any](ctx context.Context, c *Client, gameID string) (T, error) {
	var out T
	err := c.Get(ctx, gamePath(gameID, "status"), &out)
	return out, err
}

func (c *Client) SimonSequences(ctx context.Context, gameID string) (types.SimonSequences, error) {
	var out types.SimonSequences
	err := c.Get(ctx, gamePath(gameID, "simonsay/sequence"), &out)
	return out, err
}

func (c *Client) SimonChoose(ctx context.Context, gameID, color string) (types.SimonChooseResponse, error) {
	var out types.SimonChooseResponse
	err := c.Post(ctx, gamePath(gameID, "simonsay/choose"), types.SimonChooseRequest{Color: color}, &out)
	return out, err
}

func (c *Client) SimonPlay(ctx context.Context, gameID, color string, index int) (types.SimonPlayResponse, error) {
	var out types.SimonPlayResponse
	err := c.Post(ctx, gamePath(gameID, "simonsay/play"), types.SimonPlayRequest{Color: color, Index: index}, &out)
	return out, err
}

func (c *Client) Attack(ctx context.Context, gameID string, row, col int) (types.AttackResponse, error) {
	var out types.AttackResponse
	err := c.Post(ctx, gamePath(gameID, "battleship/attack"), types.AttackRequest{Row: row, Col: col}, &out)
	return out, err
}

func (c *Client) MarkCard(ctx context.Context, gameID, card string) (types.MarkResponse, error) {
	var out types.MarkResponse
	err := c.Post(ctx, gamePath(gameID, "loteria/mark"), types.MarkRequest{Card: card}, &out)
	return out, err
}

func (c *Client) ClaimWin(ctx context.Context, gameID string) (types.ClaimResponse, error) {
	var out types.ClaimResponse
	err := c.Post(ctx, gamePath(gameID, "loteria/claim"), struct{}{}, &out)
	return out, err
}
