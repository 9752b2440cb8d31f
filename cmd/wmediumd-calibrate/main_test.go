package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLossSource struct {
	loss func(r, i, j int) float64
}

func (f fakeLossSource) Loss(r, i, j int) float64 { return f.loss(r, i, j) }

func TestPerSourceDeliveredFractionPerfectLink(t *testing.T) {
	topology := fakeLossSource{loss: func(r, i, j int) float64 { return 0 }}
	require.Equal(t, 1.0, perSourceDeliveredFraction(topology, 0, 0, 3))
}

func TestPerSourceDeliveredFractionTotalLoss(t *testing.T) {
	topology := fakeLossSource{loss: func(r, i, j int) float64 { return 1 }}
	require.Equal(t, 0.0, perSourceDeliveredFraction(topology, 0, 0, 3))
}

func TestPerSourceDeliveredFractionMixed(t *testing.T) {
	// src=0; dst=1 never delivered, dst=2 always delivered: average 0.5.
	topology := fakeLossSource{loss: func(r, i, j int) float64 {
		if j == 1 {
			return 1
		}
		return 0
	}}
	require.Equal(t, 0.5, perSourceDeliveredFraction(topology, 0, 0, 3))
}

func TestPerSourceDeliveredFractionSingleRadio(t *testing.T) {
	topology := fakeLossSource{loss: func(r, i, j int) float64 { return 0 }}
	require.Equal(t, 0.0, perSourceDeliveredFraction(topology, 0, 0, 1))
}
