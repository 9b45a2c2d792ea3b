package engine

import (
	"math"
	"sort"

	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/loss"
)

// Evaluate computes the few metrics a loss needs internally: accuracy
// for classification, RMSE for regression, and NDCG@5 for ranking. It
// is deliberately narrow — broader reporting belongs to a collaborator
// outside this package's scope.
func Evaluate(model *forest.Model, rows []forest.Example, labels []float64, groupKey []int32) (map[string]float64, error) {
	switch model.Header.Task {
	case forest.Classification:
		return evaluateClassification(model, rows, labels)
	case forest.Regression:
		return evaluateRegression(model, rows, labels)
	case forest.Ranking:
		return evaluateRanking(model, rows, labels, groupKey)
	default:
		return nil, Newf(InvalidArgument, "engine: unknown task %v", model.Header.Task)
	}
}

func evaluateClassification(model *forest.Model, rows []forest.Example, labels []float64) (map[string]float64, error) {
	var correct float64
	for i, ex := range rows {
		pred, err := Predict(model, ex)
		if err != nil {
			return nil, err
		}
		if float64(pred.ClassLabel) == labels[i] {
			correct++
		}
	}
	return map[string]float64{"accuracy": correct / float64(len(rows))}, nil
}

func evaluateRegression(model *forest.Model, rows []forest.Example, labels []float64) (map[string]float64, error) {
	var sumSq float64
	for i, ex := range rows {
		pred, err := Predict(model, ex)
		if err != nil {
			return nil, err
		}
		d := pred.Score - labels[i]
		sumSq += d * d
	}
	return map[string]float64{"rmse": math.Sqrt(sumSq / float64(len(rows)))}, nil
}

func evaluateRanking(model *forest.Model, rows []forest.Example, relevance []float64, groupKey []int32) (map[string]float64, error) {
	groups, err := loss.BuildRankingGroups(groupKey, relevance)
	if err != nil {
		return nil, Wrap(InvalidArgument, err)
	}

	predictions := make([]float64, len(rows))
	for i, ex := range rows {
		pred, err := Predict(model, ex)
		if err != nil {
			return nil, err
		}
		predictions[i] = pred.Score
	}

	var sum float64
	for _, g := range groups {
		sum += ndcgAtK(g, predictions, loss.NDCG5Truncation)
	}
	return map[string]float64{"ndcg@5": sum / float64(len(groups))}, nil
}

// ndcgAtK computes NDCG@k for one ranking group given its rows'
// predicted scores, re-deriving predicted order independently of
// loss.RankingGroup's ideal (ground-truth) order.
func ndcgAtK(g loss.RankingGroup, predictions []float64, k int) float64 {
	ideal := dcgAtK(g.Relevances, k)
	if ideal == 0 {
		return 0
	}
	order := append([]int32{}, g.Indices...)
	sort.SliceStable(order, func(a, b int) bool {
		if predictions[order[a]] != predictions[order[b]] {
			return predictions[order[a]] > predictions[order[b]]
		}
		return order[a] > order[b]
	})
	relByPredictedOrder := make([]float64, len(order))
	for i, idx := range order {
		relByPredictedOrder[i] = relevanceOf(g, idx)
	}
	return dcgAtK(relByPredictedOrder, k) / ideal
}

func relevanceOf(g loss.RankingGroup, row int32) float64 {
	for i, idx := range g.Indices {
		if idx == row {
			return g.Relevances[i]
		}
	}
	return 0
}

func dcgAtK(relevancesInOrder []float64, k int) float64 {
	var dcg float64
	for i, r := range relevancesInOrder {
		if i >= k {
			break
		}
		dcg += (math.Exp2(r) - 1) / math.Log2(float64(i)+2)
	}
	return dcg
}
