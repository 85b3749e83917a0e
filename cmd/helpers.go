package cmd

import "github.com/theirongolddev/aimon/internal/model"

func lastBlock(blocks []*model.SessionBlock) *model.SessionBlock {
	if len(blocks) == 0 {
		return nil
	}
	return blocks[len(blocks)-1]
}
