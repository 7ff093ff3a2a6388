// Package services provides typed wrappers over the REST APIs of the HNR
// platform services (Watchpost, Kanban, Docs, Blog, Chat, Dashboard, QR).
//
// Every call returns a typed view that embeds the underlying
// *apiclient.Result, so callers branch on IsError and read named fields while
// the raw response stays available. The error return is reserved for
// transport failures and undecodable responses.
//
// Example usage:
//
//	kanban := services.NewKanban(client)
//	board, err := kanban.CreateBoard(ctx, services.BoardRequest{Name: "Ops"})
//	if err != nil {
//	    return err
//	}
//	if board.IsError {
//	    fmt.Println(board.ErrorMessage())
//	}
package services
